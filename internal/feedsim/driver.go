package feedsim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(url string) (*http.Response, error) {
	return c.client.Get(url)
}

// Post performs a POST request with an empty body
func (c *HTTPClient) Post(url string) (*http.Response, error) {
	req, err := http.NewRequest("POST", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// driveComputes issues compute requests concurrently using a worker pool.
// Games are cycled so repeated computes exercise the engine's cache path.
func driveComputes(ctx context.Context, config *Config, gameIDs []string, stats *Stats) ([]Moment, error) {
	log.Printf("computing %d moments across %d games with %d workers", config.Computes, len(gameIDs), config.Workers)

	client := newHTTPClient(config.Timeout)

	moments := make([]Moment, config.Computes)
	var (
		successful int64
		failed     int64
		issued     int64
		elite      int64
	)

	// Progress reporting
	var lastReport time.Time
	reportInterval := 1 * time.Second

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for index := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					gameID := gameIDs[index%len(gameIDs)]
					m, err := computeSingleMoment(client, config.EngineURL, gameID)

					atomic.AddInt64(&issued, 1)
					if err != nil {
						atomic.AddInt64(&failed, 1)
						if config.Verbose {
							log.Printf("compute failed for %s: %v", gameID, err)
						}
					} else {
						moments[index] = m
						atomic.AddInt64(&successful, 1)
						if m.Band == "elite" {
							atomic.AddInt64(&elite, 1)
						}
					}

					if time.Since(lastReport) >= reportInterval {
						lastReport = time.Now()
						log.Printf("progress: %d/%d issued (success: %d, failed: %d)",
							atomic.LoadInt64(&issued), config.Computes,
							atomic.LoadInt64(&successful), atomic.LoadInt64(&failed))
					}
				}
			}
		}(i)
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < config.Computes; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()

	// Filter out failed computes
	valid := make([]Moment, 0, len(moments))
	for _, m := range moments {
		if m.EventID != "" {
			valid = append(valid, m)
		}
	}

	stats.ComputesIssued = int(atomic.LoadInt64(&issued))
	stats.ComputesSuccessful = int(atomic.LoadInt64(&successful))
	stats.ComputesFailed = int(atomic.LoadInt64(&failed))
	stats.EliteMoments = int(atomic.LoadInt64(&elite))

	log.Printf("compute run completed: success %d, failed %d, elite %d",
		stats.ComputesSuccessful, stats.ComputesFailed, stats.EliteMoments)

	return valid, nil
}

// computeSingleMoment issues one compute request.
func computeSingleMoment(client *HTTPClient, baseURL, gameID string) (Moment, error) {
	url := fmt.Sprintf("%s/compute/%s", baseURL, gameID)

	resp, err := client.Post(url)
	if err != nil {
		return Moment{}, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return Moment{}, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return Moment{}, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var m Moment
	if err := json.Unmarshal(body, &m); err != nil {
		return Moment{}, fmt.Errorf("failed to parse response: %w", err)
	}
	return m, nil
}

// getLeaderboard retrieves the top N leaderboard entries from the engine.
func getLeaderboard(ctx context.Context, config *Config, stats *Stats) ([]Moment, error) {
	log.Printf("fetching top %d leaderboard entries", config.TopN)

	client := newHTTPClient(config.Timeout)
	url := fmt.Sprintf("%s/leaderboard?limit=%d", config.EngineURL, config.TopN)

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	body, err := readResponseBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var leaderboard []Moment
	if err := json.Unmarshal(body, &leaderboard); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	stats.LeaderboardEntries = len(leaderboard)
	log.Printf("retrieved %d leaderboard entries", len(leaderboard))

	return leaderboard, nil
}
