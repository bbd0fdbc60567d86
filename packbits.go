package tiff

// packBitsEncodeRow compresses one row of src per TIFF 6.0 PackBits. A
// decoder scans a PackBits header byte to decide between a run and a
// literal; this decides, for each position, whether a run or a literal
// segment should be emitted next, alternating between the two scan modes
// the same way decoding alternates between its two read branches.
func packBitsEncodeRow(src []byte) []byte {
	out := make([]byte, 0, len(src)+len(src)/128+2)
	i := 0
	n := len(src)

	for i < n {
		runLen := runLengthAt(src, i)
		if runLen >= 2 {
			for runLen > 128 {
				negRun := int8(127)
				out = append(out, byte(-negRun), src[i])
				i += 128
				runLen -= 128
			}
			out = append(out, byte(-(int8(runLen-1))), src[i])
			i += runLen
			continue
		}

		// Literal segment: accumulate non-run bytes until the next run of
		// >=3 identical bytes begins, or input ends, or 128 bytes collected.
		lit := make([]byte, 0, 128)
		for i < n && len(lit) < 128 {
			if runLengthAt(src, i) >= 3 {
				break
			}
			lit = append(lit, src[i])
			i++
		}
		out = append(out, byte(len(lit)-1))
		out = append(out, lit...)
	}
	return out
}

// runLengthAt returns the length (capped at 128) of the run of identical
// bytes starting at src[i], or 0/1 if fewer than 2 repeats are present.
func runLengthAt(src []byte, i int) int {
	if i >= len(src) {
		return 0
	}
	n := 1
	for i+n < len(src) && src[i+n] == src[i] && n < 128 {
		n++
	}
	return n
}

// packBitsWorstCaseRowLen is the worst-case output size for one input row of
// length n: ceil(n/128) + n.
func packBitsWorstCaseRowLen(n int) int {
	return (n+127)/128 + n
}

// packBitsEncodeTile compresses rowBytes-wide rows (rows many of them) drawn
// from a contiguous packed buffer, concatenating each row's independent
// PackBits stream (TIFF compresses PackBits per scanline, never across rows).
func packBitsEncodeTile(packed []byte, rowBytes, rows int) []byte {
	out := make([]byte, 0, packBitsWorstCaseRowLen(rowBytes)*rows)
	for r := 0; r < rows; r++ {
		row := packed[r*rowBytes : (r+1)*rowBytes]
		out = append(out, packBitsEncodeRow(row)...)
	}
	return out
}
