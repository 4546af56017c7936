// Copyright 2024
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package backblaze

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kothar/go-backblaze"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

var (
	ErrBucketNotFound = errors.New("bucket not found")
)

// RemoteName returns the object name for fn. The path of fn relative to
// baseDir is kept so that per-stock files land under the same prefix.
func RemoteName(fn, baseDir, dirname string) string {
	rel, err := filepath.Rel(baseDir, fn)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(fn)
	}

	return path.Join(dirname, filepath.ToSlash(rel))
}

// Upload copies the exported files to the bucket under dirname
func Upload(ctx context.Context, files []string, baseDir, bucketName, dirname string) error {
	logger := zerolog.Ctx(ctx)

	b2, err := backblaze.NewB2(backblaze.Credentials{
		KeyID:          viper.GetString("backblaze.application_id"),
		ApplicationKey: viper.GetString("backblaze.application_key"),
	})
	if err != nil {
		logger.Error().Err(err).Str("BucketName", bucketName).Msg("authorize backblaze failed")
		return err
	}

	bucket, err := b2.Bucket(bucketName)
	if err != nil {
		logger.Error().Err(err).Str("BucketName", bucketName).Msg("lookup bucket failed")
		return err
	}

	if bucket == nil {
		logger.Error().Str("BucketName", bucketName).Msg("bucket does not exist")
		return ErrBucketNotFound
	}

	for _, fn := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := uploadFile(ctx, bucket, bucketName, fn, RemoteName(fn, baseDir, dirname)); err != nil {
			return err
		}
	}

	return nil
}

func uploadFile(ctx context.Context, bucket *backblaze.Bucket, bucketName, fn, outName string) error {
	logger := zerolog.Ctx(ctx)

	reader, err := os.Open(fn)
	if err != nil {
		logger.Error().Err(err).Str("FileName", fn).Msg("could not open file for upload")
		return err
	}
	defer reader.Close()

	metadata := make(map[string]string)

	file, err := bucket.UploadFile(outName, metadata, reader)
	if err != nil {
		logger.Error().Err(err).Str("FileName", outName).Str("BucketName", bucketName).Msg("save file to backblaze failed")
		return err
	}

	logger.Info().Str("FileName", file.Name).Int64("Size", file.ContentLength).Str("ID", file.ID).Msg("uploaded file to backblaze")
	return nil
}
