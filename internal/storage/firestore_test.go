package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

// TestFirestore_Contract runs against the Firestore emulator. Start one with
// `gcloud emulators firestore start` and export FIRESTORE_EMULATOR_HOST.
func TestFirestore_Contract(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	// A fresh project per run keeps emulator data isolated.
	client, err := New(ctx, fmt.Sprintf("deal-finder-test-%d", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer client.Close()

	runStoreContract(t, client)
}
