package cdn

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Client uploads to an S3 bucket fronted by CloudFront. Thumbnails are the
// same object served through the CDN's resize edge function.
type S3Client struct {
	svc           *s3.S3
	bucket        string
	region        string
	cloudFrontURL string
}

func NewS3Client(bucket, region, cloudFrontURL string) (*S3Client, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3Client{
		svc:           s3.New(sess),
		bucket:        bucket,
		region:        region,
		cloudFrontURL: strings.TrimSuffix(cloudFrontURL, "/"),
	}, nil
}

func (c *S3Client) Upload(ctx context.Context, data []byte, contentType, key string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, &PermanentError{Reason: "empty payload"}
	}

	_, err := c.svc.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return nil, classifyS3Error(err)
	}

	width, height := 0, 0
	if strings.HasPrefix(contentType, "image/") {
		width, height = imageDimensions(data)
	}

	url := c.objectURL(key)
	result := &UploadResult{
		URL:    url,
		Width:  width,
		Height: height,
	}
	if strings.HasPrefix(contentType, "image/") {
		result.ThumbnailURL = url + "?width=300"
	}

	return result, nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil
		}
		return err
	}
	return nil
}

func (c *S3Client) objectURL(key string) string {
	if c.cloudFrontURL != "" {
		return c.cloudFrontURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

func classifyS3Error(err error) error {
	if reqErr, ok := err.(awserr.RequestFailure); ok {
		if reqErr.StatusCode() >= 500 || reqErr.StatusCode() == 429 {
			return &TransientError{Err: err}
		}
		return &PermanentError{Reason: reqErr.Message()}
	}
	// no HTTP response at all: connection reset, DNS, timeout
	return &TransientError{Err: err}
}
