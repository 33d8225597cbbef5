// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/staranto/boxctl/internal/record"
)

// s3API is the slice of the S3 client the store uses. Narrowed so tests can
// stub it.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store keeps records as objects under a bucket/prefix. Object PUTs are
// atomically visible, which satisfies the store's commit guarantee without a
// staging step.
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store wraps an S3 client for the given bucket and key prefix.
func NewS3Store(client *s3.Client, bucket, prefix string) (*S3Store, error) {
	if bucket == "" {
		return nil, errors.New("store bucket cannot be empty")
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix}, nil
}

// Locate implements Store.
func (s *S3Store) Locate(k Key) string {
	return path.Join(s.prefix, k.Filename())
}

// Candidates implements Store.
func (s *S3Store) Candidates(ctx context.Context, k Key) ([]string, error) {
	var locations []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(path.Join(s.prefix, k.Prefix())),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list candidates: %w", err)
		}

		for _, obj := range out.Contents {
			if _, _, _, ok := parseEntryName(path.Base(aws.ToString(obj.Key))); !ok {
				continue
			}
			locations = append(locations, aws.ToString(obj.Key))
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Strings(locations)
	return locations, nil
}

// Read implements Store.
func (s *S3Store) Read(ctx context.Context, location string) (*record.Record, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucket, location)
		}
		return nil, fmt.Errorf("failed to get record s3://%s/%s: %w", s.bucket, location, err)
	}
	defer out.Body.Close()

	rec, err := record.Decode(out.Body)
	if err != nil {
		if errors.Is(err, record.ErrFormat) {
			return nil, fmt.Errorf("%w: s3://%s/%s: %v", ErrCorrupt, s.bucket, location, err)
		}
		return nil, fmt.Errorf("failed to read record s3://%s/%s: %w", s.bucket, location, err)
	}
	return rec, nil
}

// Write implements Store.
func (s *S3Store) Write(ctx context.Context, location string, rec *record.Record) error {
	var buf bytes.Buffer
	if err := rec.Encode(&buf); err != nil {
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
		Body:   bytes.NewReader(buf.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to put record s3://%s/%s: %w", s.bucket, location, err)
	}
	return nil
}

// Entries implements Store.
func (s *S3Store) Entries(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list records: %w", err)
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			typ, fp, seed, ok := parseEntryName(path.Base(key))
			if !ok {
				continue
			}
			e := Entry{
				Location:    key,
				Type:        typ,
				Fingerprint: fp,
				Seed:        seed,
				Size:        aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				e.ModTime = *obj.LastModified
			}
			entries = append(entries, e)
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})
	return entries, nil
}

// Remove implements Store.
func (s *S3Store) Remove(ctx context.Context, location string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		return fmt.Errorf("failed to remove record s3://%s/%s: %w", s.bucket, location, err)
	}
	return nil
}
