package servicedetect

import (
	"context"
	"log"
	"math"
	"net"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/fingerprint"
	"github.com/Bihan-Banerjee/Cyber-X-sub000/internal/webfinger"
)

const (
	defaultConcurrency = 50
	defaultTimeout     = 2 * time.Second

	// bannerStoreCap bounds the banner kept in a ServiceInfo; the raw
	// read cap in banner.go is larger so version strings deep in HTTP
	// headers still reach the classifier.
	bannerStoreCap = 500
)

// Config carries the per-scan knobs supplied by the caller.
type Config struct {
	Target             string
	Ports              []int
	Timeout            time.Duration // per connect attempt
	Concurrency        int           // simultaneous connect attempts
	MaxProbesPerSecond int           // 0 disables rate limiting
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// Enricher adds supplementary detail to an identified HTTP service:
// detected technologies plus TLS handshake details when available.
type Enricher interface {
	Fingerprint(ctx context.Context, host string, port int) ([]string, *webfinger.TLSInfo)
}

// Scanner probes a target's ports under a bounded worker pool and turns
// open ones into ServiceInfo values. Every per-port failure is absorbed;
// Run never fails.
type Scanner struct {
	cfg        Config
	classifier *fingerprint.Classifier
	enricher   Enricher
	limiter    *rate.Limiter
	dial       dialFunc
	now        func() time.Time
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithDialer replaces the network dialer, used by tests to instrument
// connection attempts.
func WithDialer(dial dialFunc) Option {
	return func(s *Scanner) { s.dial = dial }
}

// WithEnricher attaches an HTTP technology enricher.
func WithEnricher(e Enricher) Option {
	return func(s *Scanner) { s.enricher = e }
}

// WithClassifier replaces the built-in classifier.
func WithClassifier(c *fingerprint.Classifier) Option {
	return func(s *Scanner) { s.classifier = c }
}

// NewScanner builds a Scanner, applying defaults for zero-valued knobs.
func NewScanner(cfg Config, opts ...Option) *Scanner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	var d net.Dialer
	s := &Scanner{
		cfg:        cfg,
		classifier: fingerprint.New(),
		dial:       d.DialContext,
		now:        time.Now,
	}
	if cfg.MaxProbesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.MaxProbesPerSecond), cfg.MaxProbesPerSecond)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WorkerPool bounds the number of simultaneous probe attempts.
type WorkerPool struct {
	semaphore  chan struct{}
	maxWorkers int
}

func NewWorkerPool(maxWorkers int) *WorkerPool {
	return &WorkerPool{
		semaphore:  make(chan struct{}, maxWorkers),
		maxWorkers: maxWorkers,
	}
}

func (wp *WorkerPool) Acquire() {
	wp.semaphore <- struct{}{}
}

func (wp *WorkerPool) Release() {
	<-wp.semaphore
}

// Run scans every configured port and aggregates the confirmed-open ones
// into a ServiceDetectionResult. Each worker owns its port's result and
// hands it to the single collecting owner; ports that are closed,
// filtered or time out are simply absent from the output.
func (s *Scanner) Run(ctx context.Context) ServiceDetectionResult {
	start := s.now()

	host := resolveTarget(s.cfg.Target)

	wp := NewWorkerPool(s.cfg.Concurrency)
	results := make(chan ServiceInfo, len(s.cfg.Ports))

	var wg sync.WaitGroup
	for _, p := range s.cfg.Ports {
		wg.Add(1)
		go func(port int) {
			defer wg.Done()
			wp.Acquire()
			defer wp.Release()

			if s.limiter != nil {
				if err := s.limiter.Wait(ctx); err != nil {
					return
				}
			}
			select {
			case <-ctx.Done():
				return
			default:
			}

			if info, open := s.probePort(ctx, host, port); open {
				results <- info
			}
		}(p)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	services := []ServiceInfo{}
	for info := range results {
		services = append(services, info)
	}
	sort.Slice(services, func(i, j int) bool { return services[i].Port < services[j].Port })

	return ServiceDetectionResult{
		Target:              s.cfg.Target,
		TotalServices:       len(services),
		Services:            services,
		ScanDurationSeconds: int(math.Round(s.now().Sub(start).Seconds())),
	}
}

// probePort makes one timed connect attempt. Success means open; any
// error, refusal or timeout uniformly means not-open and yields no
// result. Open ports get a second connection for banner collection and a
// classifier pass.
func (s *Scanner) probePort(ctx context.Context, host string, port int) (ServiceInfo, bool) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	conn, err := s.dial(dialCtx, "tcp", addr)
	cancel()
	if err != nil {
		return ServiceInfo{}, false
	}
	_ = conn.Close()

	banner := s.grabBanner(ctx, addr, port)
	id := s.classifier.Classify(port, banner)

	info := ServiceInfo{
		Port:            port,
		Protocol:        "tcp",
		Service:         id.Service,
		Version:         id.Version,
		Banner:          truncate(banner, bannerStoreCap),
		CPE:             id.CPE,
		Confidence:      id.Confidence,
		Vulnerabilities: id.Vulnerabilities,
	}

	if s.enricher != nil && isHTTPService(id.Service) {
		info.Technologies, info.TLS = s.enricher.Fingerprint(ctx, host, port)
	}
	return info, true
}

func (s *Scanner) bannerTimeout() time.Duration {
	return s.cfg.Timeout / 2
}

// resolveTarget prefers the first IPv4 address of a hostname; when
// resolution fails the raw string is scanned as-is rather than aborting.
func resolveTarget(target string) string {
	if ip := net.ParseIP(target); ip != nil {
		return target
	}
	ips, err := net.LookupIP(target)
	if err != nil {
		log.Printf("Resolution failed for %s, scanning raw target: %v", target, err)
		return target
	}
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			return v4.String()
		}
	}
	return target
}

func isHTTPService(service string) bool {
	switch service {
	case "HTTP", "HTTPS", "Apache httpd", "nginx", "Microsoft IIS", "HTTP Proxy", "HTTPS Alt":
		return true
	}
	return false
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
