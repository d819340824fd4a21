package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func TestCanonicalParticipants(t *testing.T) {
	a := CanonicalParticipants([]string{"u2", "u1", "u3"})
	b := CanonicalParticipants([]string{"u3", "u1", "u2"})

	if len(a) != 3 || a[0] != "u1" || a[1] != "u2" || a[2] != "u3" {
		t.Fatalf("expected sorted sequence, got %v", a)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("canonical sequences differ: %v vs %v", a, b)
		}
	}

	// Input must not be mutated
	in := []string{"b", "a"}
	_ = CanonicalParticipants(in)
	if in[0] != "b" {
		t.Fatalf("input slice was mutated: %v", in)
	}
}

func TestChooseNewAdmin(t *testing.T) {
	if admin := ChooseNewAdmin(nil, func(int) int { return 0 }); admin != nil {
		t.Fatalf("expected nil admin for empty group, got %v", *admin)
	}

	remaining := []string{"u1", "u2", "u3"}
	admin := ChooseNewAdmin(remaining, func(n int) int {
		if n != 3 {
			t.Fatalf("expected intn(3), got intn(%d)", n)
		}
		return 1
	})
	if admin == nil || *admin != "u2" {
		t.Fatalf("expected u2, got %v", admin)
	}
}

func TestDirectConversationDedup(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	convs := NewConversationStore(pool)

	first, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u2, u1},
	})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// Opposite argument order must return the same conversation
	second, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
	})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("direct conversations not deduped: %s vs %s", first.ID, second.ID)
	}

	want := CanonicalParticipants([]string{u1, u2})
	for i, p := range second.Participants {
		if p != want[i] {
			t.Fatalf("stored participants not canonical: %v, want %v", second.Participants, want)
		}
	}
}

func TestGroupConversationsNeverMerge(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	convs := NewConversationStore(pool)

	name := "weekend plans"
	first, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u1,
	})
	if err != nil {
		t.Fatalf("first group create failed: %v", err)
	}

	second, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u1,
	})
	if err != nil {
		t.Fatalf("second group create failed: %v", err)
	}

	if first.ID == second.ID {
		t.Fatalf("group creation merged two conversations into %s", first.ID)
	}
}

func TestCreateConversationAdminMustBeParticipant(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	outsider := uuid.NewString()
	convs := NewConversationStore(pool)

	_, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
		IsGroup:      true,
		Admin:        &outsider,
	})
	if !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
}

func TestLeaveGroupReassignsAdmin(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	u3 := seedUser(t, pool, uuid.NewString(), "carol")
	convs := NewConversationStore(pool)

	name := "trio"
	conv, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2, u3},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u1,
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	// Admin leaves; deterministic pick of the first remaining member
	newAdmin, err := convs.LeaveGroup(ctx, conv.ID, u1, func(int) int { return 0 })
	if err != nil {
		t.Fatalf("leave failed: %v", err)
	}
	if newAdmin == nil {
		t.Fatalf("expected a reassigned admin")
	}

	updated, err := convs.ByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(updated.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %v", updated.Participants)
	}
	found := false
	for _, p := range updated.Participants {
		if p == *newAdmin {
			found = true
		}
		if p == u1 {
			t.Fatalf("leaver still in participants: %v", updated.Participants)
		}
	}
	if !found {
		t.Fatalf("new admin %s not a member of %v", *newAdmin, updated.Participants)
	}

	// Non-admin leaves; admin unchanged unless the leaver held it
	before := *newAdmin
	leaver := u2
	if before == u2 {
		leaver = u3
	}
	after, err := convs.LeaveGroup(ctx, conv.ID, leaver, func(int) int { return 0 })
	if err != nil {
		t.Fatalf("second leave failed: %v", err)
	}
	if after == nil || *after != before {
		t.Fatalf("admin changed when a non-admin left: %v -> %v", before, after)
	}

	// Last member (the admin) leaves; admin cleared
	final, err := convs.LeaveGroup(ctx, conv.ID, before, func(int) int { return 0 })
	if err != nil {
		t.Fatalf("final leave failed: %v", err)
	}
	if final != nil {
		t.Fatalf("expected cleared admin for empty group, got %v", *final)
	}
}

func TestLeaveGroupErrors(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	u3 := seedUser(t, pool, uuid.NewString(), "carol")
	convs := NewConversationStore(pool)

	direct, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
	})
	if err != nil {
		t.Fatalf("direct create failed: %v", err)
	}

	if _, err := convs.LeaveGroup(ctx, direct.ID, u1, func(int) int { return 0 }); !errors.Is(err, ErrNotGroup) {
		t.Fatalf("expected ErrNotGroup, got %v", err)
	}

	name := "duo"
	group, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u1,
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	if _, err := convs.LeaveGroup(ctx, group.ID, u3, func(int) int { return 0 }); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}

	// Failed leaves must not have mutated the group
	reloaded, err := convs.ByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(reloaded.Participants) != 2 || reloaded.Admin == nil || *reloaded.Admin != u1 {
		t.Fatalf("group mutated by failed leave: %+v", reloaded)
	}

	if _, err := convs.LeaveGroup(ctx, uuid.NewString(), u1, func(int) int { return 0 }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestKickUser(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	u3 := seedUser(t, pool, uuid.NewString(), "carol")
	convs := NewConversationStore(pool)

	name := "kick target"
	conv, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2, u3},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u2,
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	// Kicking the admin clears the admin as well; the pre-removal sequence
	// comes back so callers can notify everyone who was in the group
	before, err := convs.KickUser(ctx, conv.ID, u2)
	if err != nil {
		t.Fatalf("kick failed: %v", err)
	}
	if len(before) != 3 || !contains(before, u2) {
		t.Fatalf("expected pre-removal participants, got %v", before)
	}

	updated, err := convs.ByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(updated.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %v", updated.Participants)
	}
	if updated.Admin != nil {
		t.Fatalf("expected admin cleared after kicking the admin, got %v", *updated.Admin)
	}

	if _, err := convs.KickUser(ctx, uuid.NewString(), u1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentLeavesKeepAdminInGroup(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	u3 := seedUser(t, pool, uuid.NewString(), "carol")
	convs := NewConversationStore(pool)

	name := "shrinking"
	conv, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2, u3},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u1,
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	// The admin and another member leave at the same time. The row lock
	// serializes the two read-modify-writes, so whichever order they commit
	// in, the survivor ends up as admin and neither leaver is resurrected.
	var wg sync.WaitGroup
	for _, leaver := range []string{u1, u2} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := convs.LeaveGroup(ctx, conv.ID, id, func(int) int { return 0 }); err != nil {
				t.Errorf("leave by %s failed: %v", id, err)
			}
		}(leaver)
	}
	wg.Wait()

	final, err := convs.ByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(final.Participants) != 1 || final.Participants[0] != u3 {
		t.Fatalf("expected only %s to remain, got %v", u3, final.Participants)
	}
	if final.Admin == nil || *final.Admin != u3 {
		t.Fatalf("expected admin %s, got %v", u3, final.Admin)
	}
	if final.Admin != nil && !contains(final.Participants, *final.Admin) {
		t.Fatalf("admin %s not in participants %v", *final.Admin, final.Participants)
	}
}

func TestConcurrentKicksSerialize(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	u3 := seedUser(t, pool, uuid.NewString(), "carol")
	u4 := seedUser(t, pool, uuid.NewString(), "dave")
	convs := NewConversationStore(pool)

	name := "purge"
	conv, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2, u3, u4},
		IsGroup:      true,
		GroupName:    &name,
		Admin:        &u1,
	})
	if err != nil {
		t.Fatalf("group create failed: %v", err)
	}

	var wg sync.WaitGroup
	for _, target := range []string{u2, u3} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := convs.KickUser(ctx, conv.ID, id); err != nil {
				t.Errorf("kick of %s failed: %v", id, err)
			}
		}(target)
	}
	wg.Wait()

	final, err := convs.ByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if len(final.Participants) != 2 || contains(final.Participants, u2) || contains(final.Participants, u3) {
		t.Fatalf("a concurrent kick was lost: %v", final.Participants)
	}
	if final.Admin == nil || *final.Admin != u1 {
		t.Fatalf("admin changed by kicks of non-admins: %v", final.Admin)
	}
}

func TestMyConversationsViews(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	u1 := seedUser(t, pool, uuid.NewString(), "alice")
	u2 := seedUser(t, pool, uuid.NewString(), "bob")
	convs := NewConversationStore(pool)
	msgs := NewMessageStore(pool)

	conv, err := convs.CreateConversation(ctx, CreateConversationArgs{
		Participants: []string{u1, u2},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := msgs.Append(ctx, conv.ID, u1, "text", "hi bob"); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	last, err := msgs.Append(ctx, conv.ID, u2, "text", "hello alice")
	if err != nil {
		t.Fatalf("append 2 failed: %v", err)
	}

	views, err := convs.MyConversations(ctx, u1)
	if err != nil {
		t.Fatalf("MyConversations failed: %v", err)
	}

	var view *struct {
		otherID string
		lastID  string
	}
	for _, v := range views {
		if v.ID == conv.ID {
			if v.OtherUser == nil || v.LastMessage == nil {
				t.Fatalf("view missing enrichment: %+v", v)
			}
			view = &struct {
				otherID string
				lastID  string
			}{v.OtherUser.ID, v.LastMessage.ID}
		}
	}
	if view == nil {
		t.Fatalf("conversation %s not in caller's list", conv.ID)
	}
	if view.otherID != u2 {
		t.Fatalf("expected other user %s, got %s", u2, view.otherID)
	}
	if view.lastID != last.ID {
		t.Fatalf("lastMessage is not the latest: got %s, want %s", view.lastID, last.ID)
	}
}
