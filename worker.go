package hostprobe

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type queryKind int

const (
	kindBoard queryKind = iota
	kindProcessor
	kindDiskDrives
	kindDiskPartitions
	kindVideoControllers
	kindOptionalFeatures
	kindShutdown
)

func (k queryKind) String() string {
	switch k {
	case kindBoard:
		return "baseboard"
	case kindProcessor:
		return "processor"
	case kindDiskDrives:
		return "disk drives"
	case kindDiskPartitions:
		return "disk partitions"
	case kindVideoControllers:
		return "video controllers"
	case kindOptionalFeatures:
		return "optional features"
	case kindShutdown:
		return "shutdown"
	default:
		return fmt.Sprintf("query(%d)", int(k))
	}
}

type queryRequest struct {
	kind         queryKind
	featureNames []string
}

// queryResponse carries the payload matching kind, or err.
type queryResponse struct {
	kind       queryKind
	boards     []BaseBoard
	processors []Processor
	drives     []DiskDrive
	partitions []DiskPartition
	videos     []VideoController
	features   []OptionalFeature
	err        *Error
}

type workerState int

const (
	stateUninitialized workerState = iota
	stateConnecting
	stateReady
	stateBusy
	stateShuttingDown
	stateTerminated
)

func (s workerState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateConnecting:
		return "connecting"
	case stateReady:
		return "ready"
	case stateBusy:
		return "busy"
	case stateShuttingDown:
		return "shutting down"
	case stateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// worker owns one Backend for its whole life. The backend is opened, queried
// and closed only on the worker goroutine, which is locked to a single OS
// thread: the WMI backend initializes COM and holds its SWbemServices
// connection on that thread.
type worker struct {
	id        string
	open      BackendFactory
	requests  <-chan queryRequest
	responses chan<- queryResponse
	quit      <-chan struct{}
	state     workerState
}

func (w *worker) transition(s workerState) {
	log.Debug().Str("session", w.id).Stringer("from", w.state).Stringer("to", s).Msg("hostprobe worker state")
	w.state = s
}

// run is the worker goroutine. done receives a KindWorkerFailed error if the
// goroutine panics and is closed when the goroutine exits.
func (w *worker) run(done chan<- error) {
	defer close(done)
	defer func() {
		if r := recover(); r != nil {
			w.transition(stateTerminated)
			done <- newError(KindWorkerFailed, nil, "worker %s panicked: %v", w.id, r)
		}
	}()

	// 不调用 UnlockOSThread：goroutine 退出时运行时会连同线程及其 COM 状态一起回收。
	runtime.LockOSThread()

	w.transition(stateConnecting)
	backend, err := w.open()
	if err != nil {
		w.transition(stateTerminated)
		w.send(queryResponse{err: newError(KindBackendInit, err, "worker %s failed to initialize", w.id)})
		return
	}
	w.transition(stateReady)
	w.serve(backend)
	if err := backend.Close(); err != nil {
		log.Debug().Err(err).Str("session", w.id).Msg("hostprobe backend close failed")
	}
	w.transition(stateTerminated)
}

func (w *worker) serve(backend Backend) {
	for {
		var req queryRequest
		var ok bool
		select {
		case req, ok = <-w.requests:
			if !ok {
				w.transition(stateShuttingDown)
				return
			}
		case <-w.quit:
			w.transition(stateShuttingDown)
			return
		}
		if req.kind == kindShutdown {
			w.transition(stateShuttingDown)
			return
		}

		w.transition(stateBusy)
		resp := execute(backend, req)
		if !w.send(resp) {
			w.transition(stateShuttingDown)
			return
		}
		w.transition(stateReady)
	}
}

// send delivers resp unless the caller has gone away.
func (w *worker) send(resp queryResponse) bool {
	select {
	case w.responses <- resp:
		return true
	case <-w.quit:
		return false
	}
}

func execute(b Backend, req queryRequest) queryResponse {
	resp := queryResponse{kind: req.kind}
	var err error
	switch req.kind {
	case kindBoard:
		resp.boards, err = b.BaseBoards()
	case kindProcessor:
		resp.processors, err = b.Processors()
	case kindDiskDrives:
		resp.drives, err = b.DiskDrives()
	case kindDiskPartitions:
		resp.partitions, err = b.BootPartitions()
	case kindVideoControllers:
		resp.videos, err = b.VideoControllers()
	case kindOptionalFeatures:
		resp.features, err = b.OptionalFeatures(req.featureNames...)
	default:
		err = errors.Newf("unexpected request %s", req.kind)
	}
	if err != nil {
		resp.err = newError(KindQuery, err, "%s query failed", req.kind)
	}
	return resp
}

// session is the caller side of one worker. It drives a strict lock-step
// exchange: one request, one response, no pipelining. A session is not safe
// for concurrent use.
type session struct {
	id        string
	requests  chan queryRequest
	responses chan queryResponse
	quit      chan struct{}
	done      chan error

	exited  bool
	exitErr error
	closed  bool
}

func startSession(open BackendFactory) *session {
	s := &session{
		id:        uuid.NewString(),
		requests:  make(chan queryRequest),
		responses: make(chan queryResponse),
		quit:      make(chan struct{}),
		done:      make(chan error, 1),
	}
	w := &worker{
		id:        s.id,
		open:      open,
		requests:  s.requests,
		responses: s.responses,
		quit:      s.quit,
	}
	go w.run(s.done)
	return s
}

func (s *session) markExited(err error) {
	s.exited = true
	if err != nil && s.exitErr == nil {
		s.exitErr = err
	}
}

// terminated is the error reported once the worker is known to be gone.
func (s *session) terminated() error {
	if s.exitErr != nil {
		return s.exitErr
	}
	return newError(KindChannel, nil, "worker %s is no longer running", s.id)
}

// do sends req and waits for its response.
func (s *session) do(req queryRequest) (queryResponse, error) {
	if s.closed || s.exited {
		return queryResponse{}, s.terminated()
	}

	select {
	case s.requests <- req:
	case resp := <-s.responses:
		// worker 在接收请求之前就报告了失败（后端初始化失败）
		if resp.err != nil {
			return resp, resp.err
		}
		return resp, newError(KindChannel, nil, "unsolicited %s response from worker %s", resp.kind, s.id)
	case err := <-s.done:
		s.markExited(err)
		return queryResponse{}, s.terminated()
	}

	select {
	case resp := <-s.responses:
		if resp.err != nil {
			return resp, resp.err
		}
		if resp.kind != req.kind {
			return resp, newError(KindChannel, nil, "sent %s request, got %s response", req.kind, resp.kind)
		}
		return resp, nil
	case err := <-s.done:
		s.markExited(err)
		return queryResponse{}, s.terminated()
	}
}

// close sends Shutdown and waits for the worker goroutine to exit. It returns
// a KindWorkerFailed error if the worker died abnormally at any point.
func (s *session) close() error {
	if s.closed {
		return s.exitErr
	}
	s.closed = true

	for !s.exited {
		select {
		case s.requests <- queryRequest{kind: kindShutdown}:
			err := <-s.done
			s.markExited(err)
		case resp := <-s.responses:
			// 初始化失败的 worker 正阻塞在发送上，丢弃后继续等待其退出
			if resp.err != nil {
				log.Debug().Err(resp.err).Str("session", s.id).Msg("hostprobe dropped pending worker response")
			}
		case err := <-s.done:
			s.markExited(err)
		}
	}
	close(s.quit)
	return s.exitErr
}
