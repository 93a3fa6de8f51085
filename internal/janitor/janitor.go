package janitor

import (
	"log"
	"sync"
	"time"

	"github.com/purushottamsingh1141/code-box/internal/db"
)

type Config struct {
	Interval time.Duration
	MaxAge   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval: 10 * time.Minute,
		MaxAge:   24 * time.Hour,
	}
}

// Service prunes compile results that have not been used recently, so
// the cache does not grow without bound.
type Service struct {
	database *db.Database
	config   Config
	stop     chan struct{}
	wg       sync.WaitGroup
}

func New(database *db.Database, config Config) *Service {
	return &Service{
		database: database,
		config:   config,
		stop:     make(chan struct{}),
	}
}

func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
	log.Printf("🧹 Cache janitor started (interval: %v, max age: %v)",
		s.config.Interval, s.config.MaxAge)
}

func (s *Service) Stop() {
	close(s.stop)
	s.wg.Wait()
	log.Println("🧹 Cache janitor stopped")
}

func (s *Service) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.prune()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.prune()
		}
	}
}

func (s *Service) prune() {
	pruned, err := s.database.DeleteResultsOlderThan(s.config.MaxAge)
	if err != nil {
		log.Printf("Janitor: failed to prune cache: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("🧹 Pruned %d stale compile results", pruned)
	}
}

// PruneNow runs a single pruning pass outside the ticker.
func (s *Service) PruneNow() {
	s.prune()
}
