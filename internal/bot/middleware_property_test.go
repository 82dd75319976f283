package bot

import (
	"testing"

	tele "gopkg.in/telebot.v3"
	"pgregory.net/rapid"

	"github.com/calkeo/calkeo-terminal-sub000/internal/config"
)

// TestAdminMiddlewareProperty checks that the wrapped handler runs if and
// only if the sender is an admin.
func TestAdminMiddlewareProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numAdmins := rapid.IntRange(1, 10).Draw(t, "numAdmins")
		adminIDs := make([]int64, numAdmins)
		for i := 0; i < numAdmins; i++ {
			adminIDs[i] = rapid.Int64Range(1, 1000000000).Draw(t, "adminID")
		}
		cfg := &config.Config{Admin: config.AdminConfig{IDs: adminIDs}}

		userID := rapid.Int64Range(1, 1000000000).Draw(t, "userID")
		if rapid.Bool().Draw(t, "pickAdmin") {
			userID = adminIDs[rapid.IntRange(0, numAdmins-1).Draw(t, "adminIndex")]
		}

		c := newFakeContext(-1, tele.ChatGroup, userID, "/stats")
		called := false
		_ = AdminMiddleware(cfg)(func(tele.Context) error {
			called = true
			return nil
		})(c)

		if called != cfg.IsAdmin(userID) {
			t.Fatalf("admin check mismatch: userID=%d, adminIDs=%v, called=%v", userID, adminIDs, called)
		}
		if !called && len(c.sent) != 1 {
			t.Fatalf("non-admin should get exactly one reply, got %d", len(c.sent))
		}
	})
}

// TestWhitelistMiddlewareProperty checks that group updates pass only for
// whitelisted chats.
func TestWhitelistMiddlewareProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numChats := rapid.IntRange(1, 10).Draw(t, "numChats")
		chatIDs := make([]int64, numChats)
		for i := 0; i < numChats; i++ {
			// Group chat IDs are negative
			chatIDs[i] = -rapid.Int64Range(1, 1000000000).Draw(t, "chatID")
		}
		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: chatIDs}}

		chatID := -rapid.Int64Range(1, 1000000000).Draw(t, "testChatID")
		if rapid.Bool().Draw(t, "pickKnown") {
			chatID = chatIDs[rapid.IntRange(0, numChats-1).Draw(t, "chatIndex")]
		}

		called := false
		c := newFakeContext(chatID, tele.ChatGroup, 42, "chess")
		_ = WhitelistMiddleware(cfg, newPrivateUsers())(func(tele.Context) error {
			called = true
			return nil
		})(c)

		if called != cfg.IsChatAllowed(chatID) {
			t.Fatalf("whitelist mismatch: chatID=%d, chats=%v, called=%v", chatID, chatIDs, called)
		}
	})
}

// TestEmptyWhitelistAllowsAllChatsProperty checks that an empty whitelist
// lets every chat through.
func TestEmptyWhitelistAllowsAllChatsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := &config.Config{}
		chatID := rapid.Int64Range(-1000000000, 1000000000).Draw(t, "chatID")
		chatType := tele.ChatGroup
		if chatID > 0 {
			chatType = tele.ChatPrivate
		}

		called := false
		_ = WhitelistMiddleware(cfg, newPrivateUsers())(func(tele.Context) error {
			called = true
			return nil
		})(newFakeContext(chatID, chatType, 7, "help"))

		if !called {
			t.Fatalf("with empty whitelist, chat %d should be allowed", chatID)
		}
	})
}

// TestPrivateUserCacheProperty checks that playing in a whitelisted group
// unlocks private chat for that user only.
func TestPrivateUserCacheProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		groupID := -rapid.Int64Range(1, 1000000000).Draw(t, "groupID")
		userID := rapid.Int64Range(1, 1000000).Draw(t, "userID")
		otherID := rapid.Int64Range(1000001, 2000000).Draw(t, "otherID")

		cfg := &config.Config{Whitelist: config.WhitelistConfig{Chats: []int64{groupID}}}
		users := newPrivateUsers()
		mw := WhitelistMiddleware(cfg, users)

		count := 0
		next := func(tele.Context) error {
			count++
			return nil
		}

		_ = mw(next)(newFakeContext(userID, tele.ChatPrivate, userID, "chess"))
		if count != 0 {
			t.Fatal("unknown user should be ignored in private chat")
		}

		_ = mw(next)(newFakeContext(groupID, tele.ChatGroup, userID, "chess"))
		_ = mw(next)(newFakeContext(userID, tele.ChatPrivate, userID, "chess"))
		_ = mw(next)(newFakeContext(otherID, tele.ChatPrivate, otherID, "chess"))

		if count != 2 {
			t.Fatalf("expected group and private update to pass, got %d", count)
		}
		if !users.Allowed(userID) || users.Allowed(otherID) {
			t.Fatal("private user cache holds the wrong users")
		}
	})
}
