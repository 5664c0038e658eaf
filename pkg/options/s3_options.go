package options

import (
	"github.com/spf13/pflag"
)

var _ IOptions = (*S3Options)(nil)

// S3Options configures the S3-compatible object store holding telemetry
// snapshots.
type S3Options struct {
	Endpoint        string `json:"endpoint" mapstructure:"endpoint"`
	AccessKeyID     string `json:"access-key-id" mapstructure:"access-key-id"`
	SecretAccessKey string `json:"secret-access-key" mapstructure:"secret-access-key"`
	UseSSL          bool   `json:"use-ssl" mapstructure:"use-ssl"`
	BucketName      string `json:"bucket-name" mapstructure:"bucket-name"`
	Region          string `json:"region" mapstructure:"region"`

	// RetryAttempts is the number of attempts per store call, applied by the
	// caller-side retry wrapper. Must be at least 1.
	RetryAttempts int `json:"retry-attempts" mapstructure:"retry-attempts"`

	// RetryBackoffSeconds is the base of the linear backoff between attempts:
	// the n-th retry waits n*RetryBackoffSeconds seconds.
	RetryBackoffSeconds int `json:"retry-backoff-seconds" mapstructure:"retry-backoff-seconds"`
}

func NewS3Options() *S3Options {
	return &S3Options{
		Endpoint:            "localhost:9000",
		AccessKeyID:         "admin",
		SecretAccessKey:     "public_fleetota",
		UseSSL:              false,
		BucketName:          "fleetota-telemetry",
		Region:              "us-east-1",
		RetryAttempts:       3,
		RetryBackoffSeconds: 2,
	}
}

func (o *S3Options) Validate() []error {
	if o == nil {
		return nil
	}

	errs := []error{}

	if o.Endpoint == "" {
		errs = append(errs, errRequired("s3.endpoint"))
	}
	if o.BucketName == "" {
		errs = append(errs, errRequired("s3.bucket-name"))
	}
	if o.RetryAttempts < 1 {
		errs = append(errs, errRange("s3.retry-attempts", o.RetryAttempts, 1, 10))
	}
	if o.RetryBackoffSeconds < 0 {
		errs = append(errs, errRange("s3.retry-backoff-seconds", o.RetryBackoffSeconds, 0, 60))
	}

	return errs
}

func (o *S3Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Endpoint, "s3.endpoint", o.Endpoint, "S3 service endpoint (e.g. s3.amazonaws.com or minio.local:9000).")
	fs.StringVar(&o.AccessKeyID, "s3.access-key-id", o.AccessKeyID, "S3 access key ID.")
	fs.StringVar(&o.SecretAccessKey, "s3.secret-access-key", o.SecretAccessKey, "S3 secret access key.")
	fs.BoolVar(&o.UseSSL, "s3.use-ssl", o.UseSSL, "Enable SSL for the S3 connection.")
	fs.StringVar(&o.BucketName, "s3.bucket-name", o.BucketName, "S3 bucket name for telemetry storage.")
	fs.StringVar(&o.Region, "s3.region", o.Region, "S3 region.")
	fs.IntVar(&o.RetryAttempts, "s3.retry-attempts", o.RetryAttempts, "Number of attempts per S3 call.")
	fs.IntVar(&o.RetryBackoffSeconds, "s3.retry-backoff-seconds", o.RetryBackoffSeconds, "Base of the linear backoff between S3 retries.")
}
