// Command syncclient uploads a clip to the audio sync service from a
// terminal, follows the job and optionally saves the synced output.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"vim-audiosync/internal/apiclient"
	"vim-audiosync/internal/lifecycle"
	"vim-audiosync/internal/obs"
)

func main() {
	var (
		baseURL         = flag.String("base-url", envOr("AUDIOSYNC_URL", "http://localhost:8080"), "audio sync server URL")
		pollInterval    = flag.Duration("poll-interval", lifecycle.DefaultPollInterval, "delay between status checks")
		paymentRequired = flag.Bool("payment-required", true, "require a captured Pay-per-job order before downloading")
		amount          = flag.String("amount", "7.00", "Pay-per-job price in USD")
		orderID         = flag.String("order-id", "", "captured PayPal order to report for this job")
		downloadPath    = flag.String("download", "", "save the synced file here (a directory keeps the server's file name)")
		logLevel        = flag.String("log-level", "warn", "log level")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] FILE [FILE...]\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	log := obs.NewLogger(*logLevel, false)
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := selectFiles(flag.Args())
	if err != nil {
		log.WithError(err).Fatal("failed to read selection")
	}

	client := apiclient.NewClient(*baseURL)
	out := newTerminalRenderer(os.Stdout)
	ctrl := lifecycle.NewController(client, out, lifecycle.Options{
		PaymentRequired: *paymentRequired,
		PayPerJobAmount: *amount,
		Poll:            lifecycle.PollerConfig{Interval: *pollInterval},
		Logger:          log,
	})
	defer ctrl.Close()

	if *orderID != "" {
		ctrl.Payments().OrderApproved(ctx, *orderID)
	} else if notice := priceNotice(ctrl.Payments()); notice != "" {
		out.PaymentStatus(notice)
	}

	ctrl.SelectFiles(files)
	if err := ctrl.Submit(ctx); err != nil {
		os.Exit(1)
	}

	select {
	case <-ctrl.Done():
	case <-ctx.Done():
		ctrl.Close()
		os.Exit(130)
	}
	ctrl.Wait()

	if !ctrl.Session().Ready() {
		os.Exit(1)
	}
	if err := ctrl.Download(); err != nil {
		os.Exit(2)
	}
	if *downloadPath == "" {
		return
	}

	saved, err := save(ctx, client, ctrl.Session().JobID(), *downloadPath)
	if err != nil {
		log.WithError(err).Error("download failed")
		var serverErr *lifecycle.ServerError
		if errors.As(err, &serverErr) {
			out.Alert("Error: " + serverErr.Body)
		}
		os.Exit(1)
	}
	out.Status("Saved " + saved)
}

func selectFiles(paths []string) ([]lifecycle.File, error) {
	files := make([]lifecycle.File, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		path := p
		files = append(files, lifecycle.File{
			Name: filepath.Base(path),
			Size: info.Size(),
			Open: func() (io.ReadCloser, error) { return os.Open(path) },
		})
	}
	return files, nil
}

// save writes the output of jobID to dest. When dest is a directory the
// server-suggested file name is used.
func save(ctx context.Context, client *apiclient.Client, jobID, dest string) (string, error) {
	dir, target := dest, ""
	if info, err := os.Stat(dest); err != nil || !info.IsDir() {
		dir, target = filepath.Dir(dest), dest
	}

	tmp, err := os.CreateTemp(dir, ".audiosync-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	ctx, cancel := context.WithTimeout(ctx, 6*time.Hour)
	defer cancel()
	name, err := client.Download(ctx, jobID, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}

	if target == "" {
		target = filepath.Join(dir, filepath.Base(name))
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", err
	}
	return target, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
