// Package service runs the live report feed: a poll loop that picks up newly
// created reports and pushes them to websocket subscribers.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"civiclens/config"
	"civiclens/database"
	"civiclens/metrics"
	"civiclens/websocket"

	"github.com/apex/log"
)

// Feed manages the report polling and broadcasting.
type Feed struct {
	config *config.Config
	db     *database.Database
	hub    *websocket.Hub

	// State tracking
	lastProcessedSeq int
	mu               sync.RWMutex

	// Control channels
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewFeed creates a new live feed service.
func NewFeed(cfg *config.Config, db *database.Database, hub *websocket.Hub) *Feed {
	return &Feed{
		config:   cfg,
		db:       db,
		hub:      hub,
		stopChan: make(chan struct{}),
	}
}

// Start initializes the cursor and launches the hub and the broadcast loop.
func (f *Feed) Start() error {
	log.Info("Starting live report feed...")

	go f.hub.Run()

	// New subscribers only receive reports created after they connect;
	// the cursor starts at the newest stored seq.
	latest, err := f.db.GetLatestReportSeq(context.Background())
	if err != nil {
		return fmt.Errorf("failed to initialize feed cursor: %w", err)
	}

	f.mu.Lock()
	f.lastProcessedSeq = latest
	f.mu.Unlock()

	f.wg.Add(1)
	go f.broadcastLoop()

	log.Infof("Live report feed started at seq %d", latest)
	return nil
}

// Stop stops the broadcast loop and waits for it to finish.
func (f *Feed) Stop() {
	log.Info("Stopping live report feed...")
	close(f.stopChan)
	f.wg.Wait()
}

// Hub returns the underlying websocket hub for wiring.
func (f *Feed) Hub() *websocket.Hub {
	return f.hub
}

// GetStats returns connected client count, last broadcast seq and the cursor.
func (f *Feed) GetStats() (int, int, int) {
	connectedClients, lastBroadcastSeq := f.hub.GetStats()
	f.mu.RLock()
	lastProcessedSeq := f.lastProcessedSeq
	f.mu.RUnlock()
	return connectedClients, lastBroadcastSeq, lastProcessedSeq
}

// broadcastLoop continuously polls for new reports and broadcasts them
func (f *Feed) broadcastLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.BroadcastInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopChan:
			return
		case <-ticker.C:
			if err := f.processNewReports(); err != nil {
				log.Errorf("Error processing new reports: %v", err)
			}
			clients, _ := f.hub.GetStats()
			metrics.ConnectedClients.Set(float64(clients))
		}
	}
}

// processNewReports fetches and broadcasts reports past the cursor.
func (f *Feed) processNewReports() error {
	ctx := context.Background()

	f.mu.RLock()
	lastSeq := f.lastProcessedSeq
	f.mu.RUnlock()

	reports, err := f.db.GetReportsSince(ctx, lastSeq)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return nil
	}

	// Image bytes stay behind the HTTP surface; the feed carries metadata.
	for i := range reports {
		reports[i].Image = nil
	}

	f.hub.BroadcastReports(reports)

	f.mu.Lock()
	f.lastProcessedSeq = reports[len(reports)-1].Seq
	f.mu.Unlock()

	log.Infof("Processed %d new reports (seq %d-%d)",
		len(reports), reports[0].Seq, reports[len(reports)-1].Seq)

	return nil
}
