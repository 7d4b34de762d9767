package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Object keeps entries as objects in a bucket owned by the user, so one
// client's history can follow them between machines.
type Object struct {
	client     *minio.Client
	bucketName string
	prefix     string
}

// NewObject buat koneksi MinIO dan pastikan bucket ada
func NewObject(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, prefix string) (*Object, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Object{client: cli, bucketName: bucket, prefix: prefix}, nil
}

func (o *Object) objectName(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return path.Join(o.prefix, key+".json"), nil
}

func (o *Object) Get(ctx context.Context, key string) ([]byte, bool, error) {
	name, err := o.objectName(key)
	if err != nil {
		return nil, false, err
	}
	obj, err := o.client.GetObject(ctx, o.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, false, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (o *Object) Set(ctx context.Context, key string, value []byte) error {
	name, err := o.objectName(key)
	if err != nil {
		return err
	}
	_, err = o.client.PutObject(ctx, o.bucketName, name, bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (o *Object) Remove(ctx context.Context, key string) error {
	name, err := o.objectName(key)
	if err != nil {
		return err
	}
	err = o.client.RemoveObject(ctx, o.bucketName, name, minio.RemoveObjectOptions{})
	if isNotFound(err) {
		return nil
	}
	return err
}

func (o *Object) Close() error { return nil }

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NoSuchObject"
}
