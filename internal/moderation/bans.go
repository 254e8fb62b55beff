// Package moderation is the boundary between transport and core state:
// the ban check consulted on every connection, the report pipeline, and
// the admin-facing stores behind them.
package moderation

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sorsu/tiktalk/internal/domain"
	"github.com/sorsu/tiktalk/internal/storage"
)

// HashIP one-way hashes an origin address. Only the hash is ever
// stored or compared.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// BanList wraps the bans collection: a map of hashed origin address to
// ban record.
type BanList struct {
	store *storage.Store
}

func NewBanList(store *storage.Store) *BanList {
	return &BanList{store: store}
}

func (b *BanList) load() (map[string]domain.Ban, error) {
	bans := make(map[string]domain.Ban)
	if err := b.store.Read(storage.CollectionBans, &bans); err != nil {
		return nil, err
	}
	return bans, nil
}

// Check answers whether an origin address is currently banned. An
// expired temporary ban reads as not banned.
func (b *BanList) Check(ip string) (domain.BanStatus, error) {
	bans, err := b.load()
	if err != nil {
		return domain.BanStatus{}, err
	}
	ban, ok := bans[HashIP(ip)]
	if !ok {
		return domain.BanStatus{}, nil
	}

	switch ban.Type {
	case domain.BanPermanent:
		return domain.BanStatus{
			Banned:   true,
			Type:     domain.BanPermanent,
			Reason:   ban.Reason,
			BannedBy: ban.BannedBy,
		}, nil
	case domain.BanTemporary:
		if ban.BannedUntil == nil {
			return domain.BanStatus{}, nil
		}
		now := time.Now()
		if now.Before(*ban.BannedUntil) {
			remaining := int(math.Ceil(ban.BannedUntil.Sub(now).Seconds()))
			return domain.BanStatus{
				Banned:           true,
				Type:             domain.BanTemporary,
				Reason:           ban.Reason,
				BannedUntil:      ban.BannedUntil,
				RemainingSeconds: remaining,
			}, nil
		}
	}
	return domain.BanStatus{}, nil
}

// Add stores a ban keyed by the hash of ip.
func (b *BanList) Add(ip string, ban domain.Ban) error {
	bans, err := b.load()
	if err != nil {
		return err
	}
	ban.IPHash = HashIP(ip)
	ban.Timestamp = time.Now()
	bans[ban.IPHash] = ban
	return b.store.Write(storage.CollectionBans, bans)
}

// RemoveHash deletes a ban by its stored hash key. Returns false when
// no such ban exists.
func (b *BanList) RemoveHash(ipHash string) (bool, error) {
	bans, err := b.load()
	if err != nil {
		return false, err
	}
	if _, ok := bans[ipHash]; !ok {
		return false, nil
	}
	delete(bans, ipHash)
	return true, b.store.Write(storage.CollectionBans, bans)
}

func (b *BanList) List() ([]domain.Ban, error) {
	bans, err := b.load()
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ban, 0, len(bans))
	for hash, ban := range bans {
		ban.IPHash = hash
		out = append(out, ban)
	}
	return out, nil
}

func (b *BanList) Count() int {
	bans, err := b.load()
	if err != nil {
		log.Error().Err(err).Str("module", "moderation.bans").Msg("count bans")
		return 0
	}
	return len(bans)
}

// TemporaryUntil computes the expiry for a temporary ban issued now.
func TemporaryUntil(durationHours int) *time.Time {
	until := time.Now().Add(time.Duration(durationHours) * time.Hour)
	return &until
}
