package upload

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"tradelink/internal/config"
)

// Presigner issues time-limited PUT URLs for object keys.
type Presigner interface {
	PresignPut(key, contentType string, ttl time.Duration) (string, error)
	PublicURL(key string) string
}

type s3Presigner struct {
	client    *s3.S3
	bucket    string
	endpoint  string
	region    string
	pathStyle bool
}

// NewS3Presigner builds an S3 client from cfg. Signing is local, so no
// network round trip happens here.
func NewS3Presigner(cfg config.S3Config) (Presigner, error) {
	if !cfg.Enabled() {
		return nil, ErrStorageDisabled
	}

	awsCfg := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &s3Presigner{
		client:    s3.New(sess),
		bucket:    cfg.Bucket,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		region:    cfg.Region,
		pathStyle: cfg.ForcePathStyle,
	}, nil
}

func (p *s3Presigner) PresignPut(key, contentType string, ttl time.Duration) (string, error) {
	req, _ := p.client.PutObjectRequest(&s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	signed, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("presign put %s: %w", key, err)
	}
	return signed, nil
}

func (p *s3Presigner) PublicURL(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	switch {
	case p.endpoint != "" && p.pathStyle:
		return fmt.Sprintf("%s/%s/%s", p.endpoint, p.bucket, escaped)
	case p.endpoint != "":
		u, err := url.Parse(p.endpoint)
		if err != nil {
			return fmt.Sprintf("%s/%s/%s", p.endpoint, p.bucket, escaped)
		}
		return fmt.Sprintf("%s://%s.%s/%s", u.Scheme, p.bucket, u.Host, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", p.bucket, p.region, escaped)
	}
}
