package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

// mockLicenseManager is a mock implementation of license.Manager for testing
type mockLicenseManager struct {
	validateFunc func() (bool, error)
}

func (m *mockLicenseManager) ValidateLicense() (bool, error) {
	if m.validateFunc != nil {
		return m.validateFunc()
	}
	return true, nil
}

// Other methods would be implemented as needed for the interface

// TestLicenseValidator tests the license validation middleware
func TestLicenseValidator(t *testing.T) {
	// Create a test logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	tests := []struct {
		name           string
		path           string
		validateFunc   func() (bool, error)
		wantStatusCode int
		wantNextCalled bool
	}{
		{
			name: "excluded path - root",
			path: "/",
			validateFunc: func() (bool, error) {
				t.Error("ValidateLicense should not be called for excluded paths")
				return false, nil
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name: "excluded path - license page",
			path: "/license",
			validateFunc: func() (bool, error) {
				t.Error("ValidateLicense should not be called for excluded paths")
				return false, nil
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name: "excluded path - static files",
			path: "/static/css/style.css",
			validateFunc: func() (bool, error) {
				t.Error("ValidateLicense should not be called for excluded paths")
				return false, nil
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name: "excluded path - health check",
			path: "/api/health",
			validateFunc: func() (bool, error) {
				t.Error("ValidateLicense should not be called for excluded paths")
				return false, nil
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name: "valid license",
			path: "/api/data",
			validateFunc: func() (bool, error) {
				return true, nil
			},
			wantStatusCode: http.StatusOK,
			wantNextCalled: true,
		},
		{
			name: "invalid license",
			path: "/api/data",
			validateFunc: func() (bool, error) {
				return false, nil
			},
			wantStatusCode: http.StatusPreconditionRequired,
			wantNextCalled: false,
		},
		{
			name: "license validation error",
			path: "/api/data",
			validateFunc: func() (bool, error) {
				return false, errors.New("network error")
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantNextCalled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Create mock manager
			mockManager := &mockLicenseManager{
				validateFunc: tt.validateFunc,
			}

			// Create validator
			validator := NewLicenseValidator(mockManager, logger)

			// Create test handler
			nextCalled := false
			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				w.WriteHeader(http.StatusOK)
			})

			// Create request
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()

			// Execute middleware
			handler := validator.Handler(nextHandler)
			handler.ServeHTTP(rec, req)

			// Check results
			if rec.Code != tt.wantStatusCode {
				t.Errorf("Response code = %v, want %v", rec.Code, tt.wantStatusCode)
			}

			if nextCalled != tt.wantNextCalled {
				t.Errorf("Next handler called = %v, want %v", nextCalled, tt.wantNextCalled)
			}
		})
	}
}

// TestLicenseValidatorCache tests the caching functionality
func TestLicenseValidatorCache(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	validateCallCount := 0

	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			validateCallCount++
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)
	validator.SetCacheTTL(100 * time.Millisecond) // Short TTL for testing

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	// First request - should call validate
	req1 := httptest.NewRequest("GET", "/api/data", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)

	if validateCallCount != 1 {
		t.Errorf("First request: validateCallCount = %v, want 1", validateCallCount)
	}

	// Second request immediately - should use cache
	req2 := httptest.NewRequest("GET", "/api/data", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)

	if validateCallCount != 1 {
		t.Errorf("Second request: validateCallCount = %v, want 1 (cached)", validateCallCount)
	}

	// Wait for cache to expire
	time.Sleep(150 * time.Millisecond)

	// Third request - should call validate again
	req3 := httptest.NewRequest("GET", "/api/data", nil)
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, req3)

	if validateCallCount != 2 {
		t.Errorf("Third request: validateCallCount = %v, want 2 (cache expired)", validateCallCount)
	}
}

// TestLicenseValidatorInvalidateCache tests cache invalidation
func TestLicenseValidatorInvalidateCache(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	validateCallCount := 0

	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			validateCallCount++
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	// First request
	req1 := httptest.NewRequest("GET", "/api/data", nil)
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req1)

	if validateCallCount != 1 {
		t.Errorf("First request: validateCallCount = %v, want 1", validateCallCount)
	}

	// Invalidate cache
	validator.InvalidateCache()

	// Second request - should call validate again despite cache
	req2 := httptest.NewRequest("GET", "/api/data", nil)
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req2)

	if validateCallCount != 2 {
		t.Errorf("Second request after invalidation: validateCallCount = %v, want 2", validateCallCount)
	}
}

// TestLicenseValidatorCustomExcludes tests custom path exclusions
func TestLicenseValidatorCustomExcludes(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	
	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			return false, nil // Would fail if called
		},
	}

	validator := NewLicenseValidator(mockManager, logger)
	
	// Add custom exclusions
	validator.AddExcludePath("/custom/path")
	validator.AddExcludePrefix("/api/public/")

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	tests := []struct {
		path       string
		shouldPass bool
	}{
		{"/custom/path", true},
		{"/api/public/endpoint", true},
		{"/api/private/endpoint", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if tt.shouldPass && rec.Code != http.StatusOK {
				t.Errorf("Path %s: expected to pass, got status %v", tt.path, rec.Code)
			}
			if !tt.shouldPass && rec.Code == http.StatusOK {
				t.Errorf("Path %s: expected to fail, but passed", tt.path)
			}
		})
	}
}

// TestLicenseValidatorWithRouter tests the middleware with a real Chi router
func TestLicenseValidatorWithRouter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	
	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)

	// Create Chi router
	r := chi.NewRouter()
	r.Use(validator.Handler)

	// Define routes
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("home"))
	})

	r.Get("/api/data", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	})

	r.Get("/license", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("license"))
	})

	// Test requests
	tests := []struct {
		path         string
		wantStatus   int
		wantBody     string
	}{
		{"/", http.StatusOK, "home"},
		{"/api/data", http.StatusOK, "data"},
		{"/license", http.StatusOK, "license"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Status = %v, want %v", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("Body = %v, want %v", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

// TestLicenseValidatorTimeout tests timeout handling
func TestLicenseValidatorTimeout(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	
	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			// Simulate a slow validation
			time.Sleep(10 * time.Second)
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	req := httptest.NewRequest("GET", "/api/data", nil)
	rec := httptest.NewRecorder()

	// This should timeout after 5 seconds (as defined in validateLicense method)
	start := time.Now()
	handler.ServeHTTP(rec, req)
	duration := time.Since(start)

	// Should timeout within 6 seconds (5s timeout + some overhead)
	if duration > 6*time.Second {
		t.Errorf("Request took too long: %v", duration)
	}

	// Should return service unavailable due to timeout
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %v, want %v", rec.Code, http.StatusServiceUnavailable)
	}
}

// Additional comprehensive tests for enhanced coverage

func TestLicenseValidator_Handler_APIvsHTMLRequests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	
	tests := []struct {
		name           string
		path           string
		headers        map[string]string
		validateFunc   func() (bool, error)
		expectedStatus int
		expectedBody   func(string) bool
	}{
		{
			name: "API request with invalid license returns JSON error",
			path: "/api/data",
			headers: map[string]string{
				"Accept": "application/json",
			},
			validateFunc: func() (bool, error) {
				return false, nil
			},
			expectedStatus: http.StatusPreconditionRequired,
			expectedBody: func(body string) bool {
				return strings.Contains(body, "License Not Activated") &&
					strings.Contains(body, "/errors/license-not-activated") &&
					strings.Contains(body, "trace_id")
			},
		},
		{
			name: "HTML request with invalid license redirects",
			path: "/protected-page",
			headers: map[string]string{
				"Accept": "text/html",
			},
			validateFunc: func() (bool, error) {
				return false, nil
			},
			expectedStatus: http.StatusTemporaryRedirect,
			expectedBody: func(body string) bool {
				return true // Redirect doesn't have specific body content
			},
		},
		{
			name: "Content-Type JSON treated as API request",
			path: "/data",
			headers: map[string]string{
				"Content-Type": "application/json",
			},
			validateFunc: func() (bool, error) {
				return false, nil
			},
			expectedStatus: http.StatusPreconditionRequired,
			expectedBody: func(body string) bool {
				return strings.Contains(body, "License Not Activated")
			},
		},
		{
			name: "API path prefix treated as API request",
			path: "/api/users",
			headers: map[string]string{},
			validateFunc: func() (bool, error) {
				return false, nil
			},
			expectedStatus: http.StatusPreconditionRequired,
			expectedBody: func(body string) bool {
				return strings.Contains(body, "License Not Activated")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockManager := &mockLicenseManager{
				validateFunc: tt.validateFunc,
			}

			validator := NewLicenseValidator(mockManager, logger)

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Protected content"))
			})

			req := httptest.NewRequest("GET", tt.path, nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-req-id"))
			
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			handler := validator.Handler(nextHandler)
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedBody != nil {
				assert.True(t, tt.expectedBody(rec.Body.String()), "Body validation failed: %s", rec.Body.String())
			}
		})
	}
}

func TestLicenseValidator_ErrorHandling(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		validateFunc   func() (bool, error)
		setRecentSuccess bool
		requestHeaders map[string]string
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "network error with recent success allows graceful degradation",
			validateFunc: func() (bool, error) {
				return false, errors.New("network connection failed")
			},
			setRecentSuccess: true,
			requestHeaders: map[string]string{"Accept": "text/html"},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "Protected content")
			},
		},
		{
			name: "timeout error without recent success returns error",
			validateFunc: func() (bool, error) {
				return false, context.DeadlineExceeded
			},
			setRecentSuccess: false,
			requestHeaders: map[string]string{"Accept": "application/json"},
			expectedStatus: http.StatusServiceUnavailable,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				body := rec.Body.String()
				assert.Contains(t, body, "License Validation Failed")
				assert.Contains(t, body, "/errors/license-validation-failed")
			},
		},
		{
			name: "unreachable error returns error for HTML",
			validateFunc: func() (bool, error) {
				return false, errors.New("host unreachable")
			},
			setRecentSuccess: false,
			requestHeaders: map[string]string{"Accept": "text/html"},
			expectedStatus: http.StatusTemporaryRedirect,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				location := rec.Header().Get("Location")
				assert.Contains(t, location, "/license")
				assert.Contains(t, location, "reason=validation_error")
			},
		},
		{
			name: "generic error with redirect disabled returns error page",
			validateFunc: func() (bool, error) {
				return false, errors.New("validation service unavailable")
			},
			setRecentSuccess: false,
			requestHeaders: map[string]string{"Accept": "text/html"},
			expectedStatus: http.StatusServiceUnavailable,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				assert.Contains(t, rec.Body.String(), "License validation failed")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockManager := &mockLicenseManager{
				validateFunc: tt.validateFunc,
			}

			validator := NewLicenseValidator(mockManager, logger)
			
			// Set recent success if needed
			if tt.setRecentSuccess {
				validator.cache.mu.Lock()
				validator.cache.lastSuccess = time.Now().Add(-1 * time.Hour)
				validator.cache.checkedAt = time.Now().Add(-10 * time.Minute) // Make cache old
				validator.cache.mu.Unlock()
			}

			// Disable redirect for the specific test
			if strings.Contains(tt.name, "redirect disabled") {
				validator.SetRedirectOnFail(false)
			}

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("Protected content"))
			})

			req := httptest.NewRequest("GET", "/protected", nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-req-id"))
			
			for key, value := range tt.requestHeaders {
				req.Header.Set(key, value)
			}

			rec := httptest.NewRecorder()
			handler := validator.Handler(nextHandler)
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, rec)
			}
		})
	}
}

func TestLicenseValidator_RedirectURLConstruction(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		originalPath   string
		queryParams    string
		customLicenseURL string
		expectedChecks []func(string) bool
		expectNoRedirect bool
	}{
		{
			name:         "basic redirect with return URL",
			originalPath: "/protected",
			expectedChecks: []func(string) bool{
				func(url string) bool { return strings.Contains(url, "/license") },
				func(url string) bool { return strings.Contains(url, "reason=not_activated") },
				func(url string) bool { return strings.Contains(url, "return=/protected") },
			},
		},
		{
			name:         "redirect with query parameters preserved",
			originalPath: "/data",
			queryParams:  "filter=active&sort=name",
			expectedChecks: []func(string) bool{
				func(url string) bool { return strings.Contains(url, "/license") },
				func(url string) bool { return strings.Contains(url, "return=/data?filter=active&sort=name") },
			},
		},
		{
			name:         "root path excludes return parameter",
			originalPath: "/",
			expectedChecks: []func(string) bool{
				// Root path is excluded, so no redirect should happen
				// This test should verify that excluded paths don't redirect
			},
			expectNoRedirect: true,
		},
		{
			name:         "license path excludes return parameter",
			originalPath: "/license",
			expectedChecks: []func(string) bool{
				// License path is excluded, so no redirect should happen
				// This test should verify that excluded paths don't redirect
			},
			expectNoRedirect: true,
		},
		{
			name:             "custom license URL",
			originalPath:     "/protected",
			customLicenseURL: "/activate",
			expectedChecks: []func(string) bool{
				func(url string) bool { return strings.Contains(url, "/activate") },
				func(url string) bool { return strings.Contains(url, "return=/protected") },
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockManager := &mockLicenseManager{
				validateFunc: func() (bool, error) {
					return false, nil
				},
			}

			validator := NewLicenseValidator(mockManager, logger)
			
			if tt.customLicenseURL != "" {
				validator.SetLicensePageURL(tt.customLicenseURL)
			}

			nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			fullPath := tt.originalPath
			if tt.queryParams != "" {
				fullPath += "?" + tt.queryParams
			}

			req := httptest.NewRequest("GET", fullPath, nil)
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "test-req-id"))
			req.Header.Set("Accept", "text/html")

			rec := httptest.NewRecorder()
			handler := validator.Handler(nextHandler)
			handler.ServeHTTP(rec, req)

			if tt.expectNoRedirect {
				assert.Equal(t, http.StatusOK, rec.Code)
			} else {
				assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
				location := rec.Header().Get("Location")
				
				for i, check := range tt.expectedChecks {
					assert.True(t, check(location), "Check %d failed for URL: %s", i, location)
				}
			}
		})
	}
}

func TestLicenseValidator_CacheEdgeCases(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("invalid results use shorter TTL", func(t *testing.T) {
		callCount := 0
		mockManager := &mockLicenseManager{
			validateFunc: func() (bool, error) {
				callCount++
				return false, nil // Always invalid
			},
		}

		validator := NewLicenseValidator(mockManager, logger)
		
		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		handler := validator.Handler(nextHandler)

		// First request
		req1 := httptest.NewRequest("GET", "/protected", nil)
		req1.Header.Set("Accept", "text/html")
		rec1 := httptest.NewRecorder()
		handler.ServeHTTP(rec1, req1)

		assert.Equal(t, 1, callCount)

		// Simulate 30 seconds passing (within short TTL for invalid results)
		validator.cache.mu.Lock()
		validator.cache.checkedAt = time.Now().Add(-30 * time.Second)
		validator.cache.mu.Unlock()

		// Second request should use cache (within 1 minute short TTL)
		req2 := httptest.NewRequest("GET", "/protected", nil)
		req2.Header.Set("Accept", "text/html")
		rec2 := httptest.NewRecorder()
		handler.ServeHTTP(rec2, req2)

		assert.Equal(t, 1, callCount, "Should still use cache within short TTL")

		// Simulate 2 minutes passing (beyond short TTL)
		validator.cache.mu.Lock()
		validator.cache.checkedAt = time.Now().Add(-2 * time.Minute)
		validator.cache.mu.Unlock()

		// Third request should validate again
		req3 := httptest.NewRequest("GET", "/protected", nil)
		req3.Header.Set("Accept", "text/html")
		rec3 := httptest.NewRecorder()
		handler.ServeHTTP(rec3, req3)

		assert.Equal(t, 2, callCount, "Should re-validate after short TTL expires")
	})

	t.Run("error results update cache with error metadata", func(t *testing.T) {
		mockManager := &mockLicenseManager{
			validateFunc: func() (bool, error) {
				return false, errors.New("network timeout")
			},
		}

		validator := NewLicenseValidator(mockManager, logger)
		
		nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		handler := validator.Handler(nextHandler)

		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Accept", "application/json")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		// Check cache contains error information
		stats := validator.GetCacheStats()
		assert.False(t, stats["valid"].(bool))
		assert.Greater(t, stats["error_count"].(int), 0)
		assert.NotNil(t, stats["last_error"])
		assert.Contains(t, stats["validation_id"].(string), "err-")
	})
}

func TestLicenseValidator_GetCacheStats(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)
	
	// Set custom TTL for testing
	validator.SetCacheTTL(2 * time.Minute)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	// Make a request to populate cache
	req := httptest.NewRequest("GET", "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Get cache stats
	stats := validator.GetCacheStats()

	// Verify stats structure and content
	assert.True(t, stats["valid"].(bool))
	assert.NotEmpty(t, stats["last_checked"])
	assert.Equal(t, 120, stats["ttl_seconds"]) // 2 minutes
	assert.Equal(t, 0, stats["error_count"])
	assert.NotEmpty(t, stats["last_success"])
	assert.Nil(t, stats["last_error"])
	assert.NotEmpty(t, stats["validation_id"])
	assert.GreaterOrEqual(t, stats["cache_age_seconds"], 0)
}

func TestLicenseValidator_ConcurrentAccess(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	callCount := 0
	var mu sync.Mutex
	
	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			// Add slight delay to simulate real validation
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			callCount++
			mu.Unlock()
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)
	
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := validator.Handler(nextHandler)

	// Launch concurrent requests
	const numRequests = 10
	var wg sync.WaitGroup
	results := make([]int, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			
			req := httptest.NewRequest("GET", "/protected", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			
			results[index] = rec.Code
		}(i)
	}

	wg.Wait()

	// All requests should succeed
	for i, code := range results {
		assert.Equal(t, http.StatusOK, code, "Request %d failed", i)
	}

	// Due to caching, should have only made one validation call
	mu.Lock()
	finalCallCount := callCount
	mu.Unlock()
	
	assert.Equal(t, 1, finalCallCount, "Expected only one validation call due to caching")
}

func TestLicenseValidator_DisabledValidation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			t.Error("ValidateLicense should not be called when validation is disabled")
			return false, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)
	validator.SetEnabled(false) // Disable validation

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := validator.Handler(nextHandler)

	req := httptest.NewRequest("GET", "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestLicenseValidator_HelperFunctions(t *testing.T) {
	t.Run("isNetworkError", func(t *testing.T) {
		tests := []struct {
			name     string
			err      error
			expected bool
		}{
			{"nil error", nil, false},
			{"network error", errors.New("network connection failed"), true},
			{"connection error", errors.New("connection refused"), true},
			{"timeout error", errors.New("request timeout"), true},
			{"unreachable error", errors.New("host unreachable"), true},
			{"generic error", errors.New("validation failed"), false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result := isNetworkError(tt.err)
				assert.Equal(t, tt.expected, result)
			})
		}
	})

	t.Run("isTimeoutError", func(t *testing.T) {
		tests := []struct {
			name     string
			err      error
			expected bool
		}{
			{"nil error", nil, false},
			{"context deadline exceeded", context.DeadlineExceeded, true},
			{"timeout string", errors.New("operation timeout"), true},
			{"generic error", errors.New("validation failed"), false},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				result := isTimeoutError(tt.err)
				assert.Equal(t, tt.expected, result)
			})
		}
	})

	t.Run("isAPIRequest", func(t *testing.T) {
		tests := []struct {
			name     string
			headers  map[string]string
			path     string
			expected bool
		}{
			{
				name:     "JSON Accept header",
				headers:  map[string]string{"Accept": "application/json"},
				path:     "/test",
				expected: true,
			},
			{
				name:     "JSON Content-Type header",
				headers:  map[string]string{"Content-Type": "application/json"},
				path:     "/test",
				expected: true,
			},
			{
				name:     "API path prefix",
				headers:  map[string]string{},
				path:     "/api/data",
				expected: true,
			},
			{
				name:     "HTML Accept header",
				headers:  map[string]string{"Accept": "text/html"},
				path:     "/test",
				expected: false,
			},
			{
				name:     "no identifying headers or path",
				headers:  map[string]string{},
				path:     "/page",
				expected: false,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req := httptest.NewRequest("GET", tt.path, nil)
				for key, value := range tt.headers {
					req.Header.Set(key, value)
				}
				
				result := isAPIRequest(req)
				assert.Equal(t, tt.expected, result)
			})
		}
	})
}

func TestLicenseValidator_ContextTimeoutBehavior(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			// Simulate slow validation that exceeds middleware timeout
			time.Sleep(10 * time.Second)
			return true, nil
		},
	}

	validator := NewLicenseValidator(mockManager, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	handler := validator.Handler(nextHandler)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	start := time.Now()
	handler.ServeHTTP(rec, req)
	duration := time.Since(start)

	// Should timeout within 6 seconds (5s middleware timeout + overhead)
	assert.Less(t, duration, 6*time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "License Validation Failed")
}

// Benchmark tests for performance validation
func BenchmarkLicenseValidator_ExcludedPath(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockManager := &mockLicenseManager{}
	validator := NewLicenseValidator(mockManager, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/static/css/main.css", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

func BenchmarkLicenseValidator_ValidLicense(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			return true, nil
		},
	}
	validator := NewLicenseValidator(mockManager, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/protected", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}

func BenchmarkLicenseValidator_CachedValidation(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mockManager := &mockLicenseManager{
		validateFunc: func() (bool, error) {
			return true, nil
		},
	}
	validator := NewLicenseValidator(mockManager, logger)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := validator.Handler(nextHandler)

	// Prime the cache
	req := httptest.NewRequest("GET", "/protected", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req := httptest.NewRequest("GET", "/protected", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
	}
}