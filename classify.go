package tiff

// classify implements the image classifier: from a SampleModel and
// an optional ColorModel, derive the ImageKind, validating the combination
// along the way. A PhotometricInterpretation tag maps onto an image mode
// when reading a file back; here we go the other way, deriving the
// photometric interpretation that should be written from the source's
// declared sample/color model.
func classify(sm SampleModel, cm ColorModel, hasColorModel bool, jpegRGBToYCbCr bool) (ImageKind, int, error) {
	if sm.Bands == 0 || len(sm.BitsPerSample) == 0 {
		return 0, 0, ErrUnsupportedImageKind
	}

	depth := sm.BitsPerSample[0]
	for _, d := range sm.BitsPerSample {
		if d != depth {
			return 0, 0, ErrHeterogeneousBitDepth
		}
	}

	if (depth == 1 || depth == 4) && sm.Bands != 1 {
		return 0, 0, ErrSubByteMultiband
	}

	switch sm.DataType {
	case DTByte:
		if depth != 1 && depth != 4 && depth != 8 {
			return 0, 0, ErrDataTypeDepthMismatch
		}
	case DTShort, DTUShort:
		if depth != 16 {
			return 0, 0, ErrDataTypeDepthMismatch
		}
	case DTInt, DTFloat:
		if depth != 32 {
			return 0, 0, ErrDataTypeDepthMismatch
		}
	default:
		return 0, 0, ErrUnsupportedDataType
	}

	if hasColorModel && cm.Indexed && sm.DataType != DTByte {
		return 0, 0, ErrPaletteOnlyByte
	}

	if hasColorModel && cm.Indexed {
		if sm.Bands != 1 {
			return 0, 0, ErrSubByteMultiband
		}
		if depth == 1 && len(cm.Palette) == 2 {
			if cm.Palette[0] == [3]byte{0, 0, 0} && cm.Palette[1] == [3]byte{255, 255, 255} {
				return KindBilevelBlackZero, depth, nil
			}
			if cm.Palette[0] == [3]byte{255, 255, 255} && cm.Palette[1] == [3]byte{0, 0, 0} {
				return KindBilevelWhiteZero, depth, nil
			}
		}
		return KindPalette, depth, nil
	}

	if !hasColorModel {
		if depth == 1 && sm.Bands == 1 {
			return KindBilevelBlackZero, depth, nil
		}
		return KindGeneric, depth, nil
	}

	switch cm.Space {
	case ColorSpaceCMYK:
		return KindCMYK, depth, nil
	case ColorSpaceGray:
		return KindGray, depth, nil
	case ColorSpaceLab:
		return KindCIELab, depth, nil
	case ColorSpaceRGB:
		if jpegRGBToYCbCr {
			return KindYCbCr, depth, nil
		}
		return KindRGB, depth, nil
	case ColorSpaceYCbCr:
		return KindYCbCr, depth, nil
	default:
		return KindGeneric, depth, nil
	}
}

// componentsOf returns the number of photometric color components implied
// by k, used to derive ExtraSamples count.
func componentsOf(k ImageKind) int {
	switch k {
	case KindBilevelWhiteZero, KindBilevelBlackZero, KindGray:
		return 1
	case KindPalette:
		return 1
	case KindRGB, KindYCbCr, KindCIELab:
		return 3
	case KindCMYK:
		return 4
	default: // KindGeneric
		return 1
	}
}

// extraSamplesCode returns the ExtraSamples code for a single
// extra band when it represents alpha.
func extraSamplesCode(associatedAlpha bool) int {
	if associatedAlpha {
		return esAssocAlpha
	}
	return esUnassocAlpha
}
