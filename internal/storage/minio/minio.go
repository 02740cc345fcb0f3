package minio

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// publicReadPolicy lets anonymous clients GET objects so recipe photos can be
// rendered straight from their URL.
const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicURL is the base used for object links. Defaults to the endpoint.
	PublicURL string
	// Buckets are created with public read access when missing.
	Buckets []string
}

type Client struct {
	client    *minio.Client
	publicURL string
}

// NewClient creates a new Minio client and ensures buckets exist
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	minioClient, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	base := opts.PublicURL
	if base == "" {
		base = minioClient.EndpointURL().String()
	}
	client := &Client{client: minioClient, publicURL: strings.TrimRight(base, "/")}

	for _, bucketName := range opts.Buckets {
		if err := client.ensureBucketExists(ctx, bucketName); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket %s exists: %w", bucketName, err)
		}
	}

	log.Printf("Minio client initialized successfully with buckets: %v", opts.Buckets)
	return client, nil
}

// ensureBucketExists creates a publicly readable bucket if it doesn't exist
func (c *Client) ensureBucketExists(ctx context.Context, bucketName string) error {
	exists, err := c.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists: %w", err)
	}

	if exists {
		log.Printf("Bucket already exists: %s", bucketName)
		return nil
	}

	if err := c.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	if err := c.client.SetBucketPolicy(ctx, bucketName, fmt.Sprintf(publicReadPolicy, bucketName)); err != nil {
		return fmt.Errorf("failed to set bucket policy: %w", err)
	}
	log.Printf("Created bucket: %s", bucketName)
	return nil
}

// UploadFile uploads a file to the specified bucket
func (c *Client) UploadFile(ctx context.Context, bucketName, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := c.client.PutObject(ctx, bucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}

	log.Printf("Successfully uploaded %s to bucket %s", objectName, bucketName)
	return nil
}

// PublicURL returns the anonymous link of an object.
func (c *Client) PublicURL(bucketName, objectName string) string {
	return PublicObjectURL(c.publicURL, bucketName, objectName)
}

// DownloadFile downloads a file from the specified bucket
func (c *Client) DownloadFile(ctx context.Context, bucketName, objectName string) (io.ReadCloser, error) {
	object, err := c.client.GetObject(ctx, bucketName, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}

	return object, nil
}

// PublicObjectURL joins a base URL with a bucket and an escaped object name.
func PublicObjectURL(base, bucketName, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(base, "/"), url.PathEscape(bucketName), url.PathEscape(objectName))
}
