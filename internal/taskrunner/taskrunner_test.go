package taskrunner

import (
	"testing"

	"sceneforge/log"
)

func init() {
	log.InitLogger()
}

func TestNormalizeConfig(t *testing.T) {
	cfg := normalizeConfig(Config{})
	if cfg.QueueSize != defaultQueueSize {
		t.Errorf("queue size = %d, want %d", cfg.QueueSize, defaultQueueSize)
	}
	if cfg.Concurrency != defaultConcurrency {
		t.Errorf("concurrency = %d, want %d", cfg.Concurrency, defaultConcurrency)
	}

	cfg = normalizeConfig(Config{QueueSize: 8, Concurrency: 3})
	if cfg.QueueSize != 8 || cfg.Concurrency != 3 {
		t.Errorf("explicit config rewritten: %+v", cfg)
	}
}

func TestSubmitValidation(t *testing.T) {
	r := New(nil, DefaultConfig())
	defer r.Close()

	if err := r.SubmitPipelineTask(PipelineTaskPayload{TaskID: "t1"}); err == nil {
		t.Error("expected error for empty source")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	r := New(nil, DefaultConfig())
	r.Close()

	err := r.SubmitPipelineTask(PipelineTaskPayload{TaskID: "t1", Source: "a.mp4"})
	if err != ErrRunnerStopped {
		t.Errorf("err = %v, want ErrRunnerStopped", err)
	}

	// Close is idempotent.
	r.Close()
}
