package splash

import (
	"net/http"
	"sync"
	"time"
)

// VisitCookie is the cookie that records a returning browser.
const VisitCookie = "hasVisitedBefore"

// VisitStore reads and writes the returning-visitor flag.
type VisitStore interface {
	Visited() bool
	MarkVisited()
}

// MemoryVisits keeps the flag in memory.
type MemoryVisits struct {
	mu      sync.Mutex
	visited bool
}

// NewMemoryVisits returns a store with the flag preset to visited.
func NewMemoryVisits(visited bool) *MemoryVisits {
	return &MemoryVisits{visited: visited}
}

// Visited reports the flag.
func (m *MemoryVisits) Visited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visited
}

// MarkVisited sets the flag.
func (m *MemoryVisits) MarkVisited() {
	m.mu.Lock()
	m.visited = true
	m.mu.Unlock()
}

// CookieVisits keeps the flag in a long-lived browser cookie.
type CookieVisits struct {
	r    *http.Request
	w    http.ResponseWriter
	path string
	set  bool
}

// NewCookieVisits binds the flag to one request/response pair. path
// scopes the cookie, normally the site base path or "/".
func NewCookieVisits(w http.ResponseWriter, r *http.Request, path string) *CookieVisits {
	if path == "" {
		path = "/"
	}
	return &CookieVisits{r: r, w: w, path: path}
}

// Visited reports whether the request carried the cookie, or whether it
// was set during this request.
func (c *CookieVisits) Visited() bool {
	if c.set {
		return true
	}
	cookie, err := c.r.Cookie(VisitCookie)
	return err == nil && cookie.Value == "true"
}

// MarkVisited writes the cookie to the response.
func (c *CookieVisits) MarkVisited() {
	if c.set {
		return
	}
	c.set = true
	http.SetCookie(c.w, &http.Cookie{
		Name:     VisitCookie,
		Value:    "true",
		Path:     c.path,
		Expires:  time.Now().AddDate(1, 0, 0),
		SameSite: http.SameSiteLaxMode,
	})
}
