// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubS3 serves canned ListObjectsV2 pages and records the tokens it was
// asked for.
type stubS3 struct {
	pages  []*s3.ListObjectsV2Output
	tokens []*string
	calls  int
}

func (s *stubS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	s.tokens = append(s.tokens, in.ContinuationToken)
	out := s.pages[s.calls]
	s.calls++
	return out, nil
}

func (s *stubS3) GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return nil, &types.NoSuchKey{}
}

func (s *stubS3) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return &s3.PutObjectOutput{}, nil
}

func (s *stubS3) DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3CandidatesFollowsPagination(t *testing.T) {
	ctx := context.Background()
	fp := "0123456789abcdef0123456789abcdef"

	stub := &stubS3{
		pages: []*s3.ListObjectsV2Output{
			{
				Contents: []types.Object{
					{Key: aws.String("boxes/initial_conditions-" + fp + "-r2.box")},
					{Key: aws.String("boxes/.initial_conditions-" + fp + "-r2.box.tmp")},
				},
				IsTruncated:           aws.Bool(true),
				NextContinuationToken: aws.String("page-2"),
			},
			{
				Contents: []types.Object{
					{Key: aws.String("boxes/initial_conditions-" + fp + "-r1.box")},
				},
				IsTruncated: aws.Bool(false),
			},
		},
	}

	st := &S3Store{client: stub, bucket: "my-boxes", prefix: "boxes"}
	locs, err := st.Candidates(ctx, Key{Type: "initial_conditions", Fingerprint: fp})
	require.NoError(t, err)

	// Candidates from every page, sorted, strays skipped.
	assert.Equal(t, []string{
		"boxes/initial_conditions-" + fp + "-r1.box",
		"boxes/initial_conditions-" + fp + "-r2.box",
	}, locs)

	// The second request carried the continuation token.
	require.Equal(t, 2, stub.calls)
	assert.Nil(t, stub.tokens[0])
	assert.Equal(t, "page-2", aws.ToString(stub.tokens[1]))
}

func TestS3ReadMissingIsNotFound(t *testing.T) {
	st := &S3Store{client: &stubS3{}, bucket: "my-boxes"}
	_, err := st.Read(context.Background(), "boxes/nope.box")
	assert.ErrorIs(t, err, ErrNotFound)
}
