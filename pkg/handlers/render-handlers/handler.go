/*
 * Copyright (c) 2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package render_handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/semaphore"

	"github.com/arielsmarin/straty-backend-stable/pkg/assets"
	"github.com/arielsmarin/straty-backend-stable/pkg/buildstatus"
	"github.com/arielsmarin/straty-backend-stable/pkg/compose"
	"github.com/arielsmarin/straty-backend-stable/pkg/config"
	"github.com/arielsmarin/straty-backend-stable/pkg/cubemap"
	"github.com/arielsmarin/straty-backend-stable/pkg/errors"
	"github.com/arielsmarin/straty-backend-stable/pkg/storage"
	apiutils "github.com/arielsmarin/straty-backend-stable/pkg/utils"
	"github.com/arielsmarin/straty-backend-stable/pkg/utils/httpclient"
)

// Handler owns all cross-request render state: the rate-limit clock,
// the per-build lock LRU, the active-render set and the capacity
// semaphore. One instance per process.
type Handler struct {
	store      storage.Interface
	registry   *buildstatus.Registry
	compositor *compose.Compositor
	splitter   *cubemap.Splitter

	cacheRoot   string
	tileWorkers int
	jpegQuality int
	minInterval time.Duration

	rateMu  sync.Mutex
	lastReq time.Time

	lockMu      sync.Mutex
	renderLocks *lru.Cache[string, *sync.Mutex]

	activeMu      sync.Mutex
	activeRenders map[string]bool

	renderSem *semaphore.Weighted
}

func NewHandler(ctx context.Context) (*Handler, error) {
	store, err := storage.New(ctx, config.GetStorageBackend())
	if err != nil {
		return nil, err
	}
	remoteBase := config.GetClientRemoteBase()
	if remoteBase == "" {
		remoteBase = config.GetPublicUrlBase()
	}
	resolver := assets.NewResolver(httpclient.NewHttpClient(), remoteBase, config.GetCacheRoot())

	renderLocks, err := lru.New[string, *sync.Mutex](config.GetMaxRenderLocks())
	if err != nil {
		return nil, err
	}
	return &Handler{
		store:         store,
		registry:      buildstatus.NewRegistry(),
		compositor:    compose.NewCompositor(resolver),
		splitter:      cubemap.NewSplitter(config.GetFaceWorkers(), config.GetJpegQuality()),
		cacheRoot:     config.GetCacheRoot(),
		tileWorkers:   config.GetTileWorkers(),
		jpegQuality:   config.GetJpegQuality(),
		minInterval:   time.Duration(config.GetMinIntervalMs()) * time.Millisecond,
		renderLocks:   renderLocks,
		activeRenders: make(map[string]bool),
		renderSem:     semaphore.NewWeighted(int64(config.GetMaxActiveRenders())),
	}, nil
}

type handleFunc func(*gin.Context) (interface{}, error)

func handle(c *gin.Context, fn handleFunc) {
	rsp, err := fn(c)
	if err != nil {
		apiutils.AbortWithApiError(c, err)
		return
	}
	code := http.StatusOK
	// If a status was previously set, use that status in the response.
	if c.Writer.Status() > 0 {
		code = c.Writer.Status()
	}
	c.JSON(code, rsp)
}

// allowRequest is the global admission rate limit: one accepted request
// per minInterval across all clients.
func (h *Handler) allowRequest() error {
	h.rateMu.Lock()
	defer h.rateMu.Unlock()
	now := time.Now()
	if !h.lastReq.IsZero() && now.Sub(h.lastReq) < h.minInterval {
		return errors.NewTooManyRequests("render request rate exceeded, retry shortly")
	}
	h.lastReq = now
	return nil
}

// renderLock returns the single-flight mutex for a render key, creating
// it on first use. The LRU bounds how many per-build locks are retained.
func (h *Handler) renderLock(renderKey string) *sync.Mutex {
	h.lockMu.Lock()
	defer h.lockMu.Unlock()
	if lock, ok := h.renderLocks.Get(renderKey); ok {
		return lock
	}
	lock := &sync.Mutex{}
	h.renderLocks.Add(renderKey, lock)
	return lock
}

func (h *Handler) markActive(renderKey string) {
	h.activeMu.Lock()
	defer h.activeMu.Unlock()
	h.activeRenders[renderKey] = true
}

func (h *Handler) unmarkActive(renderKey string) {
	h.activeMu.Lock()
	defer h.activeMu.Unlock()
	delete(h.activeRenders, renderKey)
}

func (h *Handler) isActive(renderKey string) bool {
	h.activeMu.Lock()
	defer h.activeMu.Unlock()
	return h.activeRenders[renderKey]
}
