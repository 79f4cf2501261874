// Package ulid makes sortable request identifiers.
package ulid

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"io"
	mathrand "math/rand"
	"os"
	"sync"
	"time"

	oklid "github.com/oklog/ulid/v2"
	"go.ntppool.org/common/logger"
)

var monotonicPool = sync.Pool{
	New: func() interface{} {

		log := logger.Setup()

		var seed int64
		err := binary.Read(cryptorand.Reader, binary.BigEndian, &seed)
		if err != nil {
			log.Error("crypto/rand error", "err", err)
			os.Exit(10)
		}

		rand := mathrand.New(mathrand.NewSource(seed))

		inc := uint64(rand.Int63())

		return oklid.Monotonic(rand, inc)
	},
}

// MakeULID returns a new ULID for time t. IDs made for the same
// millisecond from the same pooled entropy source sort in creation order.
func MakeULID(t time.Time) (*oklid.ULID, error) {

	mono := monotonicPool.Get().(io.Reader)
	defer monotonicPool.Put(mono)

	id, err := oklid.New(oklid.Timestamp(t), mono)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// RequestID returns a ULID string for the current time, or an empty
// string if the entropy source failed.
func RequestID() string {
	id, err := MakeULID(time.Now())
	if err != nil {
		logger.Setup().Warn("could not make request id", "err", err)
		return ""
	}
	return id.String()
}
