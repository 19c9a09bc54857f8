package weather

import (
	"context"
	"time"
)

// PayloadSource fetches the raw measurement and radar payloads. Both requests
// must succeed for the call to succeed.
type PayloadSource interface {
	FetchPayloads(ctx context.Context) (Payloads, error)
}

// ReportStore is the contract the in-memory report store must satisfy.
type ReportStore interface {
	Save(report Report)
	Latest() (Report, error)
	Range(from, to time.Time) ([]Report, error)
}
