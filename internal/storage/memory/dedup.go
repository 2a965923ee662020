package memory

import (
	"errors"

	"github.com/spaolacci/murmur3"

	"github.com/yndnr/userdir-go/internal/core/domain"
)

// fingerprint hashes the credential triple. Equal triples always collide;
// unequal ones rarely do, and Deduplicate compares fields on collision.
func fingerprint(rec *domain.UserRecord) uint64 {
	h := murmur3.New64()
	_, _ = h.Write([]byte(rec.Username))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(rec.Email))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(rec.Password))
	return h.Sum64()
}

// Deduplicate releases every live record whose credential triple equals
// that of an earlier live record. The earliest record of each group
// survives. A duplicate side by may not release stays in place and its
// error is collected; the pass continues. Returns snapshots of the
// released records.
func (s *Store) Deduplicate(by domain.Side) ([]*domain.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buckets := make(map[uint64][]int, s.live)
	var dups []int

	for i := 0; i < s.count; i++ {
		rec := s.slots[i]
		if rec == nil {
			continue
		}

		fp := fingerprint(rec)
		duplicate := false
		for _, j := range buckets[fp] {
			if s.slots[j].SameCredentials(rec) {
				duplicate = true
				break
			}
		}
		if duplicate {
			dups = append(dups, i)
			continue
		}
		buckets[fp] = append(buckets[fp], i)
	}

	var (
		released []*domain.UserRecord
		errs     []error
	)
	for k := len(dups) - 1; k >= 0; k-- {
		rec, err := s.releaseAtLocked(by, dups[k], ReasonDuplicate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		released = append(released, rec)
	}

	return released, errors.Join(errs...)
}
