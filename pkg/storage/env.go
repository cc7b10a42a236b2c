package storage

import "os"

// withEnv fills empty fields from the standard AWS environment variables.
func (c S3Config) withEnv() S3Config {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if *dst != "" {
				return
			}
			*dst = os.Getenv(k)
		}
	}
	set(&c.Region, "AWS_REGION", "AWS_DEFAULT_REGION")
	set(&c.Endpoint, "AWS_ENDPOINT_URL_S3", "AWS_ENDPOINT_URL")
	set(&c.AccessKeyID, "AWS_ACCESS_KEY_ID")
	set(&c.SecretAccessKey, "AWS_SECRET_ACCESS_KEY")
	return c
}
