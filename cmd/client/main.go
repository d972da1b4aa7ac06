package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"video-hub/internal/delivery/http/middleware"
	"video-hub/internal/domain/dto"
)

// countingReader tracks how many bytes of the request body were sent.
type countingReader struct {
	r    io.Reader
	sent atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.sent.Add(int64(n))
	return n, err
}

func main() {
	server := flag.String("server", "http://localhost:8000/api/v1", "Server base URL")
	videoPath := flag.String("file", "", "Video file to upload")
	thumbnailPath := flag.String("thumbnail", "", "Optional thumbnail image")
	title := flag.String("title", "", "Video title")
	description := flag.String("description", "", "Video description")
	token := flag.String("token", os.Getenv("ACCESS_TOKEN"), "Access token")
	secret := flag.String("secret", "", "Sign a token locally with this secret instead of -token")
	userID := flag.String("user", "", "User id for a locally signed token")
	flag.Parse()

	if *videoPath == "" || *title == "" || *description == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *secret != "" {
		signed, err := middleware.SignAccessToken(*secret, dto.AuthUser{ID: *userID}, jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		})
		if err != nil {
			log.Fatalf("cannot sign token: %v", err)
		}
		*token = signed
	}
	if *token == "" {
		log.Fatal("an access token is required (-token, ACCESS_TOKEN or -secret)")
	}

	stat, err := os.Stat(*videoPath)
	if err != nil {
		log.Fatalf("cannot open video: %v", err)
	}
	total := stat.Size()
	if *thumbnailPath != "" {
		if ts, err := os.Stat(*thumbnailPath); err == nil {
			total += ts.Size()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(writer, *title, *description, *videoPath, *thumbnailPath))
	}()
	body := &countingReader{r: pr}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(*server, "/")+"/videos", body)
	if err != nil {
		log.Fatalf("cannot build request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+*token)

	fmt.Printf("Server: %s\n", *server)
	fmt.Printf("File: %s (%d bytes)\n", filepath.Base(*videoPath), stat.Size())
	fmt.Println("Press Ctrl+C to cancel...")

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Printf("\rSent %d/%d bytes", body.sent.Load(), total)
			}
		}
	}()

	resp, err := http.DefaultClient.Do(req)
	close(done)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nUpload cancelled")
			os.Exit(1)
		}
		log.Fatalf("\nupload failed: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		dto.ApiResponse
		Errors []string `json:"errors"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Fatalf("\nunexpected response: HTTP %d %s", resp.StatusCode, raw)
	}
	if resp.StatusCode != http.StatusCreated {
		log.Fatalf("\nupload rejected: HTTP %d %s", resp.StatusCode, out.Message)
	}

	pretty, _ := json.MarshalIndent(out.Data, "", "  ")
	fmt.Printf("\n%s\n%s\n", out.Message, pretty)
}

func writeForm(w *multipart.Writer, title, description, videoPath, thumbnailPath string) error {
	if err := w.WriteField("title", title); err != nil {
		return err
	}
	if err := w.WriteField("description", description); err != nil {
		return err
	}
	if err := copyFile(w, "videoFile", videoPath); err != nil {
		return err
	}
	if thumbnailPath != "" {
		if err := copyFile(w, "thumbnail", thumbnailPath); err != nil {
			return err
		}
	}
	return w.Close()
}

func copyFile(w *multipart.Writer, field, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
