// Command tiffgen writes a synthetic multi-page TIFF file: a checkerboard
// page followed by a radial-gradient page, configured from a YAML profile.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"

	gdraw "golang.org/x/image/draw"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	tiff "github.com/mdouchement/tiffenc"
)

// EncodeProfile is the on-disk configuration for this CLI, kept separate
// from tiff.Options so the core library never depends on YAML.
type EncodeProfile struct {
	Width       int    `yaml:"width"`
	Height      int    `yaml:"height"`
	Compression string `yaml:"compression"`
	Tiled       bool   `yaml:"tiled"`
	TileSize    int    `yaml:"tile_size"`
	Software    string `yaml:"software"`
}

func defaultProfile() EncodeProfile {
	return EncodeProfile{
		Width:       256,
		Height:      256,
		Compression: "packbits",
		Tiled:       false,
		TileSize:    64,
		Software:    "tiffgen",
	}
}

func loadProfile(path string) (EncodeProfile, error) {
	p := defaultProfile()
	if path == "" {
		return p, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("open profile: %w", err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(&p); err != nil {
		return p, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func compressionFromName(name string) tiff.Compression {
	switch name {
	case "packbits":
		return tiff.CompressionPackBits
	case "deflate":
		return tiff.CompressionDeflate
	default:
		return tiff.CompressionNone
	}
}

func checkerboard(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	const cell = 16
	a, b := colornames.Navy, colornames.Gainsboro
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := a
			if (x/cell+y/cell)%2 == 0 {
				c = b
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func radialGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDist
			if d > 1 {
				d = 1
			}
			v := uint8(255 * (1 - d))
			img.Set(x, y, color.NRGBA{R: v, G: v / 2, B: 255 - v, A: 255})
		}
	}
	return img
}

func scaled(src image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	gdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), gdraw.Over, nil)
	return dst
}

func main() {
	profilePath := flag.String("profile", "", "path to a YAML EncodeProfile")
	out := flag.String("out", "out.tiff", "output file path")
	flag.Parse()

	profile, err := loadProfile(*profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tiffgen:", err)
		os.Exit(1)
	}

	page1 := checkerboard(profile.Width, profile.Height)
	page2 := scaled(radialGradient(profile.Width, profile.Height), profile.Width, profile.Height)

	// Draw a 4-pixel black bar along the top edge of page2 so the two pages
	// are visually distinct even at small sizes.
	draw.Draw(page2, image.Rect(0, 0, profile.Width, 4), image.NewUniform(colornames.Black), image.Point{}, draw.Over)

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintln(os.Stderr, "tiffgen:", err)
		os.Exit(1)
	}
	defer f.Close()

	opts := tiff.Options{
		Compression:      compressionFromName(profile.Compression),
		WriteTiled:       profile.Tiled,
		TileWidth:        profile.TileSize,
		TileHeight:       profile.TileSize,
		Software:         profile.Software,
		ImageDescription: "synthetic checkerboard + radial gradient",
		Logger:           tiff.NewDefaultLogger(),
		ExtraImages: []tiff.Page{
			{Image: tiff.GoImageSource{Img: page2}},
		},
	}

	if err := tiff.Encode(f, tiff.GoImageSource{Img: page1}, opts); err != nil {
		fmt.Fprintln(os.Stderr, "tiffgen: encode failed:", err)
		os.Exit(1)
	}
}
