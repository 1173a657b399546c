package blockfile

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		ObserveFile(err error, records, framingErrors, skippedBytes uint64, started time.Time)
	}
)
