// Package storage uploads finished tile directories to S3-compatible
// object storage (AWS S3, MinIO). Upload is an optional post-split step;
// tiling itself never depends on it.
package storage

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Config describes the target bucket and the local directory to upload.
type Config struct {
	Endpoint  string // empty for AWS proper; set for MinIO or other gateways
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string // key prefix, e.g. the scene id
	Dir       string // local tile directory
}

// uploadable file suffixes: tile images plus the manifest artifacts.
var uploadExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true,
	".tif": true, ".tiff": true, ".webp": true,
	".csv": true, ".db": true,
}

// UploadDir uploads every tile and manifest file in cfg.Dir to the
// bucket, creating the bucket if needed. Individual file failures are
// logged and skipped; the returned count is the number uploaded.
func UploadDir(ctx context.Context, cfg Config) (int, error) {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return 0, err
	}

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
			return 0, fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		log.Printf("created bucket %s", cfg.Bucket)
	}

	names, err := collectFiles(cfg.Dir)
	if err != nil {
		return 0, err
	}

	uploaded := 0
	for _, name := range names {
		path := filepath.Join(cfg.Dir, name)
		f, err := os.Open(path)
		if err != nil {
			log.Printf("could not open %s: %v", name, err)
			continue
		}
		key := name
		if cfg.Prefix != "" {
			key = cfg.Prefix + "/" + key
		}
		_, err = client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(cfg.Bucket),
			Key:    aws.String(key),
			Body:   f,
		})
		f.Close()
		if err != nil {
			log.Printf("failed to upload %s: %v", name, err)
			continue
		}
		uploaded++
	}
	return uploaded, nil
}

// collectFiles lists the uploadable files directly under dir: tile
// images plus the manifest artifacts. Subdirectories are not descended
// into, so a dual-time output root must be uploaded per role directory.
func collectFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tile directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !uploadExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

func newClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}
