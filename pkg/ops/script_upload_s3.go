package ops

import (
	"crypto/md5"
	"encoding/base64"
	"io"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type ScriptUploadS3 struct {
	common

	s3     s3iface.S3API
	bucket string
	dir    string
}

func NewScriptUploadS3(api s3iface.S3API, bucket, dir string) *ScriptUploadS3 {
	return &ScriptUploadS3{
		s3:     api,
		bucket: bucket,
		dir:    dir,
	}
}

// Upload puts the info and then the script of id into the bucket.
func (c *ScriptUploadS3) Upload(id string) error {
	if _, err := ReadInfo(c.dir, id); err != nil {
		return err
	}

	err := c.put(id, infoPath(c.dir, id), id+infoSuffix, "application/json")
	if err != nil {
		return err
	}

	return c.put(id, scriptPath(c.dir, id), id+scriptSuffix, "text/x-shellscript")
}

func (c *ScriptUploadS3) put(id, path, key, contentType string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}

	defer f.Close()

	hf := md5.New()

	_, err = io.Copy(hf, f)
	if err != nil {
		return err
	}

	_, err = f.Seek(0, io.SeekStart)
	if err != nil {
		return err
	}

	out, err := c.s3.PutObject(&s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         aws.String(key),
		Body:        f,
		ContentMD5:  aws.String(base64.StdEncoding.EncodeToString(hf.Sum(nil))),
		ContentType: aws.String(contentType),
		Metadata: map[string]*string{
			"cibuild-id": aws.String(id),
		},
	})
	if err != nil {
		return err
	}

	c.L().Info("uploaded", "key", key, "etag", aws.StringValue(out.ETag))

	return nil
}
