package main

import (
	"bufio"
	"errors"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// errUnknownFormat is returned for output paths that are neither .png nor .ppm
var errUnknownFormat = errors.New("unknown output format")

func checkOutputFormat(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".ppm":
		return nil
	default:
		return fmt.Errorf("%s: %w (use .png or .ppm)", path, errUnknownFormat)
	}
}

// writeImage encodes frame to path, choosing the format by extension
func writeImage(path string, frame *renderer.Frame, gamma float64) error {
	if err := checkOutputFormat(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		err = writePPM(file, frame, gamma)
	} else {
		err = png.Encode(file, frame.ToRGBA(gamma))
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("error saving %s: %w", path, err)
	}
	return nil
}

// writePPM writes a plain-text P3 PPM, one pixel per line, top row first
func writePPM(w io.Writer, frame *renderer.Frame, gamma float64) error {
	img := frame.ToRGBA(gamma)
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "P3\n%d %d\n255\n", frame.Width, frame.Height)
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			offset := img.PixOffset(x, y)
			fmt.Fprintf(bw, "%d %d %d\n", img.Pix[offset], img.Pix[offset+1], img.Pix[offset+2])
		}
	}

	return bw.Flush()
}
