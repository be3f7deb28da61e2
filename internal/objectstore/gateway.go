package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/devendra0039/s3-file-manager/internal/common"
	"github.com/devendra0039/s3-file-manager/internal/logging"
)

// DefaultURLTTL is how long presigned part and read URLs stay valid.
const DefaultURLTTL = time.Hour

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3API is the subset of *s3.Client the gateway calls.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Presigner is the subset of *s3.PresignClient the gateway calls.
type Presigner interface {
	PresignUploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ S3API     = (*s3.Client)(nil)
	_ Presigner = (*s3.PresignClient)(nil)
)

// Config describes how to reach the bucket.
//
// When AccessKeyID is empty the default AWS credential chain (environment,
// shared config, instance role) is used instead of static keys.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	URLTTL          time.Duration
}

// Object is one listed key.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
}

// Listing is the result of a delimited prefix listing.
type Listing struct {
	CommonPrefixes []string
	Objects        []Object
}

// CompletedPart pairs a part number with the ETag returned for it.
type CompletedPart struct {
	PartNumber int32
	ETag       string
}

// Disposition selects how a presigned read URL is served.
type Disposition string

const (
	DispositionAttachment Disposition = "attachment"
	DispositionInline     Disposition = "inline"
)

type Gateway struct {
	api     S3API
	presign Presigner
	bucket  string
	urlTTL  time.Duration
	logger  logging.Logger
}

// New builds a Gateway backed by a real S3 client.
func New(ctx context.Context, c Config, logger logging.Logger) (*Gateway, error) {
	if c.Bucket == "" {
		return nil, common.ErrNotConfigured
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.Region)}
	if c.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.Endpoint != "" {
			o.BaseEndpoint = aws.String(c.Endpoint)
		}
		o.UsePathStyle = c.UsePathStyle
	})

	return NewWithClients(client, s3.NewPresignClient(client), c.Bucket, c.URLTTL, logger), nil
}

// NewWithClients wires a Gateway from already constructed clients.
func NewWithClients(api S3API, presign Presigner, bucket string, urlTTL time.Duration, logger logging.Logger) *Gateway {
	if urlTTL <= 0 {
		urlTTL = DefaultURLTTL
	}
	return &Gateway{api: api, presign: presign, bucket: bucket, urlTTL: urlTTL, logger: logger}
}

func (g *Gateway) Bucket() string {
	return g.bucket
}

// ListObjects lists every key under prefix, folding keys below the next
// delimiter into CommonPrefixes. All pages are fetched.
func (g *Gateway) ListObjects(ctx context.Context, prefix, delimiter string) (*Listing, error) {
	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(g.bucket),
		Prefix: aws.String(prefix),
	}
	if delimiter != "" {
		in.Delimiter = aws.String(delimiter)
	}

	listing := &Listing{}
	p := s3.NewListObjectsV2Paginator(g.api, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, newError("listObjects", g.bucket, prefix, err)
		}
		for _, cp := range page.CommonPrefixes {
			listing.CommonPrefixes = append(listing.CommonPrefixes, aws.ToString(cp.Prefix))
		}
		for _, o := range page.Contents {
			listing.Objects = append(listing.Objects, Object{
				Key:          aws.ToString(o.Key),
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
				ETag:         aws.ToString(o.ETag),
			})
		}
	}

	return listing, nil
}

// PutEmptyObject writes a zero-byte object. It backs folder markers and
// uploads of empty files, which cannot go through a multipart session.
func (g *Gateway) PutEmptyObject(ctx context.Context, key, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(g.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(nil),
		ContentLength: aws.Int64(0),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := g.api.PutObject(ctx, in); err != nil {
		return newError("putObject", g.bucket, key, err)
	}
	return nil
}

func (g *Gateway) DeleteObject(ctx context.Context, key string) error {
	_, err := g.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return newError("deleteObject", g.bucket, key, err)
	}
	return nil
}

// HeadObject reports whether key exists. A missing key is not an error.
func (g *Gateway) HeadObject(ctx context.Context, key string) (bool, error) {
	_, err := g.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, newError("headObject", g.bucket, key, err)
}

// CreateMultipartSession opens a multipart upload and returns its upload ID.
func (g *Gateway) CreateMultipartSession(ctx context.Context, key, contentType string) (string, error) {
	in := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(g.bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	out, err := g.api.CreateMultipartUpload(ctx, in)
	if err != nil {
		return "", newError("createMultipartUpload", g.bucket, key, err)
	}

	id := aws.ToString(out.UploadId)
	if id == "" {
		return "", newError("createMultipartUpload", g.bucket, key, fmt.Errorf("empty upload id"))
	}
	return id, nil
}

// AuthorizePartUpload presigns an UploadPart request for one part number.
func (g *Gateway) AuthorizePartUpload(ctx context.Context, key, sessionID string, partNumber int32) (string, error) {
	req, err := g.presign.PresignUploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(g.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(sessionID),
		PartNumber: aws.Int32(partNumber),
	}, s3.WithPresignExpires(g.urlTTL))
	if err != nil {
		return "", newError("presignUploadPart", g.bucket, key, err)
	}
	return req.URL, nil
}

// CompleteMultipartSession asks the store to assemble the parts. parts must
// already be in ascending part number order.
func (g *Gateway) CompleteMultipartSession(ctx context.Context, key, sessionID string, parts []CompletedPart) error {
	completed := make([]types.CompletedPart, 0, len(parts))
	for _, p := range parts {
		completed = append(completed, types.CompletedPart{
			PartNumber: aws.Int32(p.PartNumber),
			ETag:       aws.String(p.ETag),
		})
	}

	_, err := g.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(g.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(sessionID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return newError("completeMultipartUpload", g.bucket, key, err)
	}
	return nil
}

// AbortMultipartSession discards a multipart upload. Aborting an upload the
// store no longer knows (already aborted or completed) succeeds.
func (g *Gateway) AbortMultipartSession(ctx context.Context, key, sessionID string) error {
	_, err := g.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(g.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(sessionID),
	})
	if err == nil {
		return nil
	}
	if isNoSuchUpload(err) {
		g.logger.Debug(ctx, "multipart upload already gone", "key", key, "session_id", sessionID)
		return nil
	}
	return newError("abortMultipartUpload", g.bucket, key, err)
}

// SignedReadURL presigns a GET for key. Attachment URLs carry the base name
// as the download file name.
func (g *Gateway) SignedReadURL(ctx context.Context, key string, disposition Disposition) (string, error) {
	cd := string(DispositionInline)
	if disposition == DispositionAttachment {
		cd = fmt.Sprintf("attachment; filename=%q", path.Base(key))
	}

	req, err := g.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(g.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(cd),
	}, s3.WithPresignExpires(g.urlTTL))
	if err != nil {
		return "", newError("presignGetObject", g.bucket, key, err)
	}
	return req.URL, nil
}
