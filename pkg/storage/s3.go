package storage

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/readsphere/readsphere/pkg/config"
)

const delimiter = "/"

type s3API interface {
	s3.ListObjectsV2APIClient
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Client talks to any S3-compatible endpoint, including the S3 gateway of
// Supabase storage. Only the top level of the bucket is considered.
type S3Client struct {
	api s3API
}

func NewS3Client(ctx context.Context, cfg *config.Config) (*S3Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.StorageRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.StorageAccessKeyID,
			cfg.StorageSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load object store config")
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.StorageEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.StorageEndpoint)
		}
		o.UsePathStyle = cfg.StorageUsePathStyle
	})

	return &S3Client{api}, nil
}

// List returns the files and folders at the top level of the bucket, sorted by
// name. Files carry their ETag as ID.
func (c *S3Client) List(ctx context.Context, bucket string) ([]Object, error) {
	objects := []Object{}
	folders := map[string]bool{}

	addFolder := func(prefix string) {
		name := strings.TrimSuffix(prefix, delimiter)
		if name == "" || folders[name] {
			return
		}
		folders[name] = true
		objects = append(objects, Object{Name: name})
	}

	paginator := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Delimiter: aws.String(delimiter),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list bucket %q", bucket)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if strings.HasSuffix(key, delimiter) {
				addFolder(key)
				continue
			}
			id := strings.Trim(aws.ToString(obj.ETag), `"`)
			if id == "" {
				id = key
			}
			objects = append(objects, Object{Name: key, ID: aws.String(id)})
		}
		for _, prefix := range page.CommonPrefixes {
			addFolder(aws.ToString(prefix.Prefix))
		}
	}

	sort.SliceStable(objects, func(i, j int) bool {
		return objects[i].Name < objects[j].Name
	})

	return objects, nil
}

// Move renames an object by copying it to the new key and deleting the old
// one. If the delete fails the copy is left in place.
func (c *S3Client) Move(ctx context.Context, bucket, from, to string) error {
	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(url.PathEscape(bucket + "/" + from)),
		Key:        aws.String(to),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to copy %q to %q", from, to)
	}

	_, err = c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(from),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to delete %q after copying it to %q", from, to)
	}

	return nil
}
