package bot_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SscSPs/finance_bot/internal/bot"
)

func TestCleaner_DeletesAfterDelay(t *testing.T) {
	messenger := newFakeMessenger()
	cleaner := bot.NewCleaner(messenger, nil)
	defer cleaner.Stop()

	cleaner.Schedule(42, 7, 5*time.Millisecond)

	select {
	case d := <-messenger.deleted:
		assert.Equal(t, deletion{chatID: 42, messageID: 7}, d)
	case <-time.After(2 * time.Second):
		t.Fatal("message was not deleted")
	}
	assert.Eventually(t, func() bool { return cleaner.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestCleaner_FailuresAreIgnored(t *testing.T) {
	messenger := newFakeMessenger()
	messenger.deleteErr = errors.New("message to delete not found")
	cleaner := bot.NewCleaner(messenger, nil)
	defer cleaner.Stop()

	cleaner.Schedule(42, 7, time.Millisecond)

	select {
	case <-messenger.deleted:
	case <-time.After(2 * time.Second):
		t.Fatal("deletion was not attempted")
	}
}

func TestCleaner_Cancel(t *testing.T) {
	messenger := newFakeMessenger()
	cleaner := bot.NewCleaner(messenger, nil)
	defer cleaner.Stop()

	cancel := cleaner.Schedule(42, 7, 50*time.Millisecond)
	assert.Equal(t, 1, cleaner.Pending())
	cancel()
	cancel()
	assert.Zero(t, cleaner.Pending())

	select {
	case d := <-messenger.deleted:
		t.Fatalf("cancelled deletion ran: %+v", d)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestCleaner_Stop(t *testing.T) {
	messenger := newFakeMessenger()
	cleaner := bot.NewCleaner(messenger, nil)

	cleaner.Schedule(1, 1, 50*time.Millisecond)
	cleaner.Schedule(1, 2, 50*time.Millisecond)
	cleaner.Stop()
	cleaner.Schedule(1, 3, time.Millisecond)

	assert.Zero(t, cleaner.Pending())
	select {
	case d := <-messenger.deleted:
		t.Fatalf("deletion ran after Stop: %+v", d)
	case <-time.After(150 * time.Millisecond):
	}
}
