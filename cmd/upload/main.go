// Command upload pushes a locally recorded clip through the video upload
// pipeline against a running server: request grant, PUT to storage, confirm.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mantism/hyperbolic/internal/uploader"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "base URL of the Hyperbolic API")
		token    = flag.String("token", os.Getenv("HYPERBOLIC_TOKEN"), "bearer token (defaults to $HYPERBOLIC_TOKEN)")
		trickID  = flag.String("trick", "", "trick ObjectID the clip demonstrates")
		userID   = flag.String("user", "", "uploading user's ObjectID")
		mimeType = flag.String("mime", "", "MIME type (default: derived from file extension)")
		duration = flag.Int64("duration-ms", 0, "clip duration in milliseconds (optional)")
	)
	flag.Parse()

	if flag.NArg() != 1 || *trickID == "" {
		fmt.Fprintf(os.Stderr, "usage: %s -trick <id> [flags] <clip file>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		log.Fatalf("FATAL: Cannot stat %s: %v", path, err)
	}

	contentType := *mimeType
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}
	if contentType == "" {
		contentType = "video/mp4"
	}

	req := uploader.UploadRequest{
		TrickID:  *trickID,
		UserID:   *userID,
		FileName: filepath.Base(path),
		FileSize: info.Size(),
		MimeType: contentType,
	}
	if *duration > 0 {
		req.DurationMs = duration
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coord := uploader.New(*server, uploader.StaticSession(*token))
	videoID, err := coord.UploadVideo(ctx, req, uploader.FileSource(path), func(percent int) {
		fmt.Fprintf(os.Stderr, "\rprogress: %3d%%", percent)
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		if ue, ok := uploader.AsError(err); ok {
			log.Fatalf("FATAL: Upload failed during %s: %v", ue.Phase, ue)
		}
		log.Fatalf("FATAL: Upload failed: %v", err)
	}

	fmt.Println(videoID)
}
