package e2e

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small query helper used to read back the points the
// service wrote.
type InfluxClient struct {
	bucket string
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for an already running server.
func NewInfluxClient(url, org, bucket, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{bucket: bucket, client: c, query: c.QueryAPI(org)}
}

// CountPoints returns the number of fields written to measurement in the
// last five minutes, optionally restricted to one endpoint tag.
func (c *InfluxClient) CountPoints(ctx context.Context, measurement, endpoint string) (int, error) {
	flux := fmt.Sprintf(`from(bucket:%q) |> range(start:-5m) |> filter(fn: (r) => r._measurement == %q)`, c.bucket, measurement)
	if endpoint != "" {
		flux += fmt.Sprintf(` |> filter(fn: (r) => r.endpoint == %q)`, endpoint)
	}
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
