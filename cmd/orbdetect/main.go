// Command orbdetect extracts oriented keypoints and binary descriptors from
// an image and writes them out.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"strings"

	"orb-keypoints/internal/config"
	"orb-keypoints/internal/imageio"
	"orb-keypoints/internal/keypoints"
	"orb-keypoints/internal/overlay"
	"orb-keypoints/internal/store"
	"orb-keypoints/internal/version"
)

func main() {
	imagePath := flag.String("image", "", "Path to input image (PNG, JPEG, GIF, TIFF, BMP or WebP)")
	configPath := flag.String("config", "", "Tuning config JSON (default: built-in defaults)")
	outPath := flag.String("out", "", "Write the descriptor table (gob) to this path")
	npyPath := flag.String("npy", "", "Write the descriptor matrix (.npy) to this path")
	jsonPath := flag.String("json", "", "Write a JSON run manifest to this path")
	overlayPath := flag.String("overlay", "", "Write a PNG overlay of the keypoints to this path")
	seed := flag.Int64("seed", 0, "Seed for the sampling pattern (overrides the config)")
	maxDim := flag.Int("max-dim", -1, "Downscale so the longer side is at most N pixels (overrides the config)")
	gray := flag.String("gray", "", "Grayscale conversion: mean, luma or value (overrides the config)")
	top := flag.Int("top", 20, "Number of keypoints to list")
	verbose := flag.Bool("v", false, "Log per-run stage summaries")
	trace := flag.Bool("trace", false, "Log per-stage detail")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("orbdetect"))
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: orbdetect -image <path> [-config tuning.json] [-out table.gob] [-npy desc.npy] [-json run.json] [-overlay out.png] [-seed N] [-max-dim N] [-gray mean|luma|value] [-v]")
		os.Exit(1)
	}
	if !imageio.IsSupportedFormat(*imagePath) {
		fmt.Fprintf(os.Stderr, "Unsupported image format: %s (want one of %s)\n",
			*imagePath, strings.Join(imageio.SupportedFormats(), ", "))
		os.Exit(1)
	}

	// Logging
	var diagW, traceW io.Writer
	if *verbose || *trace {
		diagW = os.Stderr
	}
	if *trace {
		traceW = os.Stderr
	}
	keypoints.SetLogWriters(os.Stderr, diagW, traceW)

	// Configuration
	cfg := config.DefaultTuningConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
	}
	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
	if setFlags["seed"] {
		cfg.PatternSeed = seed
	}
	if setFlags["max-dim"] {
		cfg.MaxDimension = maxDim
	}
	if setFlags["gray"] {
		cfg.Grayscale = gray
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(1)
	}
	params := cfg.Params()
	grayMode := cfg.GetGrayscale()

	// Load image
	src, err := imageio.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", src.Format, src.Width(), src.Height())
	if src.DPI > 0 {
		fmt.Printf("DPI: %.0f\n", src.DPI)
	}

	img, scale := imageio.Downscale(src.Image, cfg.GetMaxDimension())
	if scale != 1 {
		fmt.Printf("Downscaled to %dx%d (scale %.3f)\n", img.Bounds().Dx(), img.Bounds().Dy(), scale)
	}

	grid, err := imageio.ToGrid(img, grayMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert image: %v\n", err)
		os.Exit(1)
	}
	stats := grid.Stats()
	fmt.Printf("Intensity (%s): min %.1f max %.1f mean %.1f\n", grayMode, stats.Min, stats.Max, stats.Mean)

	// Sampling pattern
	var rng *rand.Rand
	patternSeed, seeded := cfg.GetPatternSeed()
	if seeded {
		rng = rand.New(rand.NewSource(patternSeed))
	}
	pattern, err := keypoints.NewPattern(rng, params.DescriptorBits, params.PatchRadius)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to draw sampling pattern: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nParameters:\n")
	fmt.Printf("  Pre-blur: %dx%d sigma %.2f\n", params.PreBlurSize, params.PreBlurSize, params.PreBlurSigma)
	fmt.Printf("  FAST: threshold %.1f arc %d\n", params.FAST.Threshold, params.FAST.ArcLength)
	fmt.Printf("  Harris: k %.3f threshold %g window %d sigma %.2f\n",
		params.Harris.K, params.Harris.Threshold, params.Harris.WindowSize, params.Harris.Sigma)
	fmt.Printf("  Patch radius: %d, descriptor bits: %d\n", params.PatchRadius, params.DescriptorBits)

	// Run extraction
	fmt.Printf("\nExtracting keypoints...\n")
	res, err := keypoints.Extract(grid, params, pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nFound %d keypoints, %d with descriptors\n", len(res.Keypoints), len(res.Features))
	if n := min(*top, len(res.Keypoints)); n > 0 {
		fmt.Printf("%6s %6s %14s %10s\n", "X", "Y", "Response", "Angle")
		fmt.Println(strings.Repeat("-", 39))
		for i, kp := range res.Keypoints[:n] {
			fmt.Printf("%6d %6d %14.1f %9.1f°\n", kp.X, kp.Y, kp.Response, res.Orientations[i]*180/math.Pi)
		}
	}

	// Outputs
	table := store.NewTable(*imagePath, grid.Width(), grid.Height(), res)
	table.Scale = scale
	table.DPI = src.DPI

	if *outPath != "" {
		if err := table.Save(*outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save table: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved table: %s\n", *outPath)
	}

	if *npyPath != "" {
		if err := table.SaveNPY(*npyPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save descriptors: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved descriptors: %s\n", *npyPath)
	}

	if *overlayPath != "" {
		rendered := overlay.Render(src.Image, overlay.MarkersFromResult(res, scale), overlay.DefaultOptions())
		if err := overlay.SavePNG(*overlayPath, rendered); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save overlay: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved overlay: %s\n", *overlayPath)
	}

	if *jsonPath != "" {
		m := store.NewManifest(table, res, params)
		m.Grayscale = grayMode.String()
		if seeded {
			m.Seed = &patternSeed
		}
		m.TablePath = *outPath
		m.NPYPath = *npyPath
		m.OverlayPath = *overlayPath
		if err := m.Save(*jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save manifest: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Saved manifest: %s\n", *jsonPath)
	}
}
