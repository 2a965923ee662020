package command

import (
	"context"
	"strings"
)

// Scenario names.
const (
	ScenarioLifecycle  = "lifecycle"
	ScenarioDuplicates = "duplicates"
	ScenarioHandoff    = "handoff"
)

// scenario populates directories through s and drives their days.
type scenario func(ctx context.Context, s *simulation) error

var scenarios = map[string]scenario{
	ScenarioLifecycle:  runLifecycle,
	ScenarioDuplicates: runDuplicates,
	ScenarioHandoff:    runHandoff,
}

type signup struct {
	username string
	email    string
	password string
}

func newSignup(name string) signup {
	return signup{username: name, email: name + "@example.com", password: "pw-" + name}
}

// loginAll authenticates every signup, recording failures as events.
func (s *simulation) loginAll(ctx context.Context, day int, login func(ctx context.Context, username, password string) (string, error), users ...signup) {
	for _, u := range users {
		if _, err := login(ctx, u.username, u.password); err != nil {
			s.eventf("day %d: login %s failed: %s", day, u.username, errorCode(err))
		}
	}
}

// runLifecycle registers four users of which only the middle two keep
// logging in. The others age out once they pass the inactivity threshold.
func runLifecycle(ctx context.Context, s *simulation) error {
	d, err := s.open(s.cfg.Side)
	if err != nil {
		return err
	}

	users := []signup{newSignup("user1"), newSignup("user2"), newSignup("user3"), newSignup("user4")}
	for _, u := range users {
		rec, err := d.CreateUser(u.username, u.email, u.password)
		if err != nil {
			return err
		}
		if _, err := d.AddUser(ctx, rec); err != nil {
			return err
		}
	}

	if err := d.UpdateUsername(ctx, "user1", strings.Repeat("C", 99)); err != nil {
		s.eventf("update_username user1: rejected with %s", errorCode(err))
	}
	if _, err := d.Authenticate(ctx, "user1", "not-the-password"); err != nil {
		s.eventf("login user1 with a wrong password: rejected with %s", errorCode(err))
	}
	if _, err := d.GetPassword("user4"); err == nil {
		s.eventf("get_password user4: found")
	}

	s.runDays(ctx, func(ctx context.Context, day int) {
		s.loginAll(ctx, day, d.Authenticate, users[1], users[2])
	})
	return nil
}

// runDuplicates inserts the same credentials twice. The copy is released
// on the first dedup day and its slot reclaimed on the next compaction day.
func runDuplicates(ctx context.Context, s *simulation) error {
	d, err := s.open(s.cfg.Side)
	if err != nil {
		return err
	}

	alice, bob, carol := newSignup("alice"), newSignup("bob"), newSignup("carol")
	for _, u := range []signup{alice, bob, alice, carol} {
		id, err := d.Register(ctx, u.username, u.email, u.password)
		if err != nil {
			return err
		}
		if id == 3 {
			s.eventf("registered a second %s as user_id=%d", u.username, id)
		}
	}

	s.runDays(ctx, func(ctx context.Context, day int) {
		s.loginAll(ctx, day, d.Authenticate, alice, bob, carol)
	})
	return nil
}

// runHandoff has the peer side share one record and lets the local side
// borrow it. The local side cannot pull the peer's records by itself;
// the peer then hands them over. The borrow goes stale once its record
// leaves the peer store.
func runHandoff(ctx context.Context, s *simulation) error {
	local, err := s.open(s.cfg.Side)
	if err != nil {
		return err
	}
	peer, err := s.open(s.cfg.Side.Other())
	if err != nil {
		return err
	}
	if err := local.AttachPeer(peer.Store()); err != nil {
		return err
	}
	if err := peer.AttachPeer(local.Store()); err != nil {
		return err
	}

	alice := newSignup("alice")
	if _, err := local.Register(ctx, alice.username, alice.email, alice.password); err != nil {
		return err
	}

	peerUsers := []signup{newSignup("erin"), newSignup("frank"), newSignup("grace")}
	ids := make(map[string]int, len(peerUsers))
	for _, u := range peerUsers {
		id, err := peer.Register(ctx, u.username, u.email, u.password)
		if err != nil {
			return err
		}
		ids[u.username] = id
	}

	if err := peer.Share(ids["grace"]); err != nil {
		return err
	}
	borrow, err := local.Borrow(peer.Store(), ids["grace"])
	if err != nil {
		return err
	}
	if rec, err := borrow.Resolve(); err == nil {
		s.eventf("side %s borrowed %s (user_id=%d) from %s", local.Side(), rec.Username, rec.ID, peer.Store().Name())
	}

	if err := peer.Store().Release(local.Side(), ids["erin"]); err != nil {
		s.eventf("side %s releasing erin in %s: refused with %s", local.Side(), peer.Store().Name(), errorCode(err))
	}

	joined, err := local.Join(ctx, peer)
	if err != nil {
		s.eventf("side %s joining %s: %d records moved, refused with %s",
			local.Side(), peer.Store().Name(), len(joined), errorCode(err))
	}

	moved, err := peer.HandOff(ctx, local)
	if err != nil {
		s.eventf("handoff from %s: %s", peer.Store().Name(), errorCode(err))
	}
	s.eventf("%s handed off %d records to %s as user_id=%s",
		peer.Store().Name(), len(moved), local.Store().Name(), joinIDs(moved))

	if _, err := borrow.Resolve(); err != nil {
		s.eventf("borrow of user_id=%d after handoff: %s", borrow.ID(), errorCode(err))
	}

	users := append([]signup{alice}, peerUsers...)
	s.runDays(ctx, func(ctx context.Context, day int) {
		s.loginAll(ctx, day, local.Authenticate, users...)
	})
	return nil
}
