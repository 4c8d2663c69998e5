// Command icotool lists, extracts, and creates ICO/CUR files.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"

	"IcoTools/ico"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  list FILE                                list the entries of an ICO/CUR file\n")
	fmt.Fprintf(os.Stderr, "  extract [-o DIR] [-prefix P] FILE        decode every entry to a PNG file\n")
	fmt.Fprintf(os.Stderr, "  create [-o FILE] [-cursor] [-hotspot X,Y] [-sizes N,N,...] SRC...\n")
	fmt.Fprintf(os.Stderr, "                                           build an ICO/CUR from PNG/BMP images\n")
	os.Exit(2)
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("icotool: ")
	if len(os.Args) < 2 {
		usage()
	}
	var err error
	switch os.Args[1] {
	case "list":
		err = runList(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "create":
		err = runCreate(os.Args[2:])
	default:
		usage()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func readIconDir(path string) (*ico.IconDir, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ico.Read(f)
}

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}
	dir, err := readIconDir(fs.Arg(0))
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d %v entries\n", fs.Arg(0), len(dir.Entries()), dir.ResourceType())
	for i, entry := range dir.Entries() {
		format := "bmp"
		if entry.IsPNG() {
			format = "png"
		}
		if x, y, ok := entry.CursorHotspot(); ok {
			fmt.Printf("  %d: %dx%d %s, hotspot (%d,%d), %d bytes\n",
				i, entry.Width(), entry.Height(), format, x, y, len(entry.Data()))
		} else {
			fmt.Printf("  %d: %dx%d %s, %d bpp, %d bytes\n",
				i, entry.Width(), entry.Height(), format, entry.BitsPerPixel(), len(entry.Data()))
		}
	}
	return nil
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	outDir := fs.String("o", ".", "output directory")
	prefix := fs.String("prefix", "", "prefix for output file names")
	fs.Parse(args)
	if fs.NArg() != 1 {
		usage()
	}
	dir, err := readIconDir(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return err
	}
	for i, entry := range dir.Entries() {
		img, err := entry.Decode()
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		name := fmt.Sprintf("%s_icon%dx%d@%dbit.png",
			*prefix, entry.Width(), entry.Height(), entry.BitsPerPixel())
		f, err := os.Create(filepath.Join(*outDir, name))
		if err != nil {
			return err
		}
		if err := img.WritePNG(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}

func runCreate(args []string) error {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	outPath := fs.String("o", "out.ico", "output file")
	cursor := fs.Bool("cursor", false, "write a CUR file instead of an ICO file")
	hotspot := fs.String("hotspot", "0,0", "cursor hotspot, as X,Y (implies -cursor)")
	sizes := fs.String("sizes", "", "render a single source at these square sizes, e.g. 16,32,48")
	fs.Parse(args)
	if fs.NArg() < 1 {
		usage()
	}

	hotspotX, hotspotY, err := parseHotspot(*hotspot)
	if err != nil {
		return err
	}
	isCursor := *cursor || *hotspot != "0,0"

	var sources []image.Image
	for _, path := range fs.Args() {
		src, err := decodeImageFile(path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}
	if *sizes != "" {
		if len(sources) != 1 {
			return fmt.Errorf("-sizes needs exactly one source image, got %d", len(sources))
		}
		resized, err := resizeToSizes(sources[0], *sizes)
		if err != nil {
			return err
		}
		sources = resized
	}

	restype := ico.ResourceIcon
	if isCursor {
		restype = ico.ResourceCursor
	}
	dir := ico.New(restype)
	for _, src := range sources {
		icon := toIconImage(src)
		if isCursor {
			icon.SetCursorHotspot(hotspotX, hotspotY)
		}
		entry, err := ico.Encode(icon)
		if err != nil {
			return err
		}
		dir.AddEntry(entry)
	}

	f, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	if err := dir.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func decodeImageFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return src, nil
}

func parseHotspot(arg string) (x, y uint16, err error) {
	parts := strings.SplitN(arg, ",", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid hotspot %q, want X,Y", arg)
	}
	xv, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hotspot %q: %v", arg, err)
	}
	yv, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hotspot %q: %v", arg, err)
	}
	return uint16(xv), uint16(yv), nil
}

func resizeToSizes(src image.Image, list string) ([]image.Image, error) {
	var out []image.Image
	for _, field := range strings.Split(list, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || size < 1 {
			return nil, fmt.Errorf("invalid size %q", field)
		}
		out = append(out, resize.Resize(uint(size), uint(size), src, resize.Lanczos3))
	}
	return out, nil
}

// toIconImage redraws a decoded image into the canonical RGBA raster layout.
func toIconImage(src image.Image) *ico.IconImage {
	bounds := src.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	return ico.FromRGBAData(uint32(bounds.Dx()), uint32(bounds.Dy()), rgba.Pix)
}
