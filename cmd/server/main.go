package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kulaginds/bmp-html5/internal/bmp"
	"github.com/kulaginds/bmp-html5/internal/config"
	"github.com/kulaginds/bmp-html5/internal/handler"
	"github.com/kulaginds/bmp-html5/internal/logging"
	"github.com/kulaginds/bmp-html5/internal/surface"
)

const (
	appName    = "BMP HTML5 Viewer"
	appVersion = "v1.0.0"
)

func main() {
	hostFlag := flag.String("host", "", "server listen host")
	portFlag := flag.String("port", "", "server listen port")
	logLevelFlag := flag.String("log-level", "", "log level (debug, info, warn, error)")
	bottomUpFlag := flag.Bool("bottom-up", false, "reverse rows of positive-height bitmaps per the BMP bottom-up convention")
	infoFlag := flag.String("info", "", "print bitmap metadata for FILE and exit")
	decodeFlag := flag.String("decode", "", "decode FILE and exit")
	outFlag := flag.String("out", "", "write the decoded image of -decode to a PNG file")
	helpFlag := flag.Bool("help", false, "show help")
	versionFlag := flag.Bool("version", false, "show version")

	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	if *versionFlag {
		showVersion()
		return
	}

	opts := config.LoadOptions{
		Host:         strings.TrimSpace(*hostFlag),
		Port:         strings.TrimSpace(*portFlag),
		LogLevel:     strings.TrimSpace(*logLevelFlag),
		BottomUpRows: *bottomUpFlag,
	}

	cfg, err := config.LoadWithOverrides(opts)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logging.SetLevelFromString(cfg.Logging.Level)

	if *infoFlag != "" {
		if err := runInfo(*infoFlag); err != nil {
			log.Fatalln(err)
		}
		return
	}

	if *decodeFlag != "" {
		if err := runDecode(cfg, *decodeFlag, *outFlag); err != nil {
			log.Fatalln(err)
		}
		return
	}

	server := createServer(cfg)
	log.Printf("starting server on %s:%s", cfg.Server.Host, cfg.Server.Port)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalln(err)
	}
}

// runInfo parses headers only and dumps them in human-readable form.
func runInfo(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := bmp.DecodeInfo(file)
	if err != nil {
		return err
	}

	printInfo(path, info)
	return nil
}

// runDecode performs a full decode and optionally writes the surface as PNG.
func runDecode(cfg *config.Config, path, outPath string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	opts := bmp.Options{
		Allocate: surface.Bounded(surface.NewRGBA, cfg.Decoder.MaxWidth, cfg.Decoder.MaxHeight),
	}
	if cfg.Decoder.BottomUpRows {
		opts.RowOrder = bmp.RowOrderBottomUp
	}

	res, err := bmp.Decode(file, opts)
	if err != nil {
		return err
	}

	printInfo(path, &res.Info)
	w, h := res.Surface.Size()
	fmt.Printf("decoded surface: %dx%d\n", w, h)

	if outPath == "" {
		return nil
	}

	rgba, ok := res.Surface.(*surface.RGBA)
	if !ok {
		return fmt.Errorf("unexpected surface type %T", res.Surface)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, rgba.Img); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outPath)
	return nil
}

func printInfo(path string, info *bmp.Info) {
	fmt.Printf("file:               %s\n", path)
	fmt.Printf("file size:          %d bytes\n", info.FileSize)
	fmt.Printf("pixel array offset: %d\n", info.PixelArrayOffset)
	fmt.Printf("dimensions:         %dx%d\n", info.Width, info.Height)
	fmt.Printf("bits per pixel:     %d\n", info.BitsPerPixel)
	fmt.Printf("compression:        %s\n", info.Compression)
	fmt.Printf("color count:        %d\n", info.ColorCount)
	fmt.Printf("pixel data size:    %d bytes\n", info.ImageSize)
	if info.Masks != nil {
		fmt.Printf("channel masks:      R=%#08x G=%#08x B=%#08x\n",
			info.Masks.Red, info.Masks.Green, info.Masks.Blue)
	}
}

func createServer(cfg *config.Config) *http.Server {
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("./web")))
	mux.HandleFunc("/decode", handler.Decode)

	h := securityHeadersMiddleware(corsMiddleware(mux, cfg.Security.AllowedOrigins))
	h = requestLoggingMiddleware(h)

	return &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		// Allow inline scripts/styles for the single-page viewer
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; connect-src 'self' ws: wss:")

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowedOrigins []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isOriginAllowed(origin, allowedOrigins, r.Host) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isOriginAllowed(origin string, allowedOrigins []string, host string) bool {
	if origin == "" {
		return false
	}

	for _, allowed := range allowedOrigins {
		if strings.TrimSpace(allowed) == origin {
			return true
		}
	}

	if len(allowedOrigins) == 0 {
		return strings.Contains(origin, host)
	}

	return false
}

func requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s %s", r.RemoteAddr, r.Method, r.URL.Path, time.Since(start))
	})
}

func showHelp() {
	fmt.Println(appName)
	fmt.Println("USAGE: bmp-html5 [options]")
	fmt.Println("OPTIONS:")
	fmt.Println("  -host        Set server listen host (default 0.0.0.0)")
	fmt.Println("  -port        Set server listen port (default 8080)")
	fmt.Println("  -log-level   Set log level (debug, info, warn, error)")
	fmt.Println("  -bottom-up   Reverse rows of positive-height bitmaps")
	fmt.Println("  -info FILE   Print bitmap metadata and exit")
	fmt.Println("  -decode FILE Decode a bitmap and exit")
	fmt.Println("  -out FILE    Write the decoded image of -decode as PNG")
	fmt.Println("  -version     Show version information")
	fmt.Println("  -help        Show this help message")
	fmt.Println("ENVIRONMENT VARIABLES: SERVER_HOST, SERVER_PORT, LOG_LEVEL,")
	fmt.Println("  DECODER_MAX_WIDTH, DECODER_MAX_HEIGHT, DECODER_MAX_INPUT_BYTES,")
	fmt.Println("  DECODER_PREVIEW_EDGE, DECODER_BOTTOM_UP_ROWS, ALLOWED_ORIGINS")
	fmt.Println("EXAMPLES: bmp-html5 -port 8080")
	fmt.Println("          bmp-html5 -decode image.bmp -out image.png")
}

func showVersion() {
	fmt.Printf("%s %s\n", appName, appVersion)
}
