package service

import (
	"sceneforge/config"
	"sceneforge/internal/media"
	"sceneforge/internal/types"
	"sceneforge/pkg/fal"
	"sceneforge/pkg/vision"
	"sceneforge/pkg/whisper"
)

// Service carries the external collaborators. Handlers and the task runner
// share one instance; tests construct it with mocks.
type Service struct {
	Detector    types.SceneDetector
	Frames      types.FrameExtractor
	Transcriber types.Transcriber
	Analyzer    types.VisionAnalyzer
	Generator   types.ClipGenerator
	Assembler   types.Assembler

	Progress types.ProgressFunc
}

func NewService() *Service {
	ff := media.NewFFmpeg()

	gen := fal.NewClient(fal.Options{
		BaseUrl:           config.Conf.Generate.BaseUrl,
		ApiKey:            config.Conf.Generate.ApiKey,
		PollIntervalSec:   config.Conf.Generate.PollIntervalSec,
		MaxWaitSec:        config.Conf.Generate.MaxWaitSec,
		MaxAttempts:       config.Conf.Generate.MaxAttempts,
		FixedClipDuration: config.Conf.Generate.FixedClipDuration,
		CostPerSecondUSD:  config.Conf.Generate.CostPerSecondUSD,
		PromptMaxLen:      config.Conf.Generate.PromptMaxLen,
	})

	return &Service{
		Detector:    ff,
		Frames:      ff,
		Transcriber: whisper.NewClient(config.Conf.Transcribe.BaseUrl, config.Conf.Transcribe.ApiKey, config.Conf.Transcribe.Model),
		Analyzer:    vision.NewClient(config.Conf.Analysis.BaseUrl, config.Conf.Analysis.ApiKey, config.Conf.Analysis.Model),
		Generator:   gen,
		Assembler:   ff,
	}
}

func (s *Service) reportProgress(taskID string, pct uint8, msg string) {
	if s.Progress != nil {
		s.Progress(taskID, pct, msg)
	}
}
