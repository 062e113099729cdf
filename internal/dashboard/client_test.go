package dashboard

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_TokenSwapDuringRequests(t *testing.T) {
	api := newFakeAPI()
	srv := api.start()
	defer srv.Close()

	client := NewClient(srv.URL)
	client.SetToken("tok-1")

	// A logout can rewrite the token while background watchers and delayed
	// reloads still have requests in flight; both sides must stay safe.
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := range 200 {
			if i%2 == 0 {
				client.SetToken("")
			} else {
				client.SetToken("tok-1")
			}
		}
	}()

	go func() {
		defer wg.Done()
		for range 200 {
			// Some calls race the cleared token into a 401; only the absence
			// of torn reads matters here.
			_, _ = client.Orders(context.Background(), "m1")
			_ = client.Token()
			_, _ = client.eventsURL("m1")
		}
	}()

	wg.Wait()

	client.SetToken("tok-1")
	_, err := client.Orders(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", client.Token())
}
