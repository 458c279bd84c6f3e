// Package mocks provides mock implementations of core interfaces for testing.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sceneforge/internal/timeline"
)

// MockSceneDetector is a mock implementation of types.SceneDetector
type MockSceneDetector struct {
	mock.Mock
}

func (m *MockSceneDetector) DetectBoundaries(ctx context.Context, videoPath string, threshold float64) ([]float64, error) {
	args := m.Called(ctx, videoPath, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}

func (m *MockSceneDetector) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	args := m.Called(ctx, videoPath)
	return args.Get(0).(float64), args.Error(1)
}

// MockFrameExtractor is a mock implementation of types.FrameExtractor
type MockFrameExtractor struct {
	mock.Mock
}

func (m *MockFrameExtractor) ExtractFrames(ctx context.Context, videoPath string, window timeline.Span, count int, outDir string) ([]string, error) {
	args := m.Called(ctx, videoPath, window, count, outDir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// MockTranscriber is a mock implementation of types.Transcriber
type MockTranscriber struct {
	mock.Mock
}

func (m *MockTranscriber) TranscribeWindow(ctx context.Context, videoPath string, window timeline.Span) ([]timeline.DialogueSegment, error) {
	args := m.Called(ctx, videoPath, window)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]timeline.DialogueSegment), args.Error(1)
}

// MockVisionAnalyzer is a mock implementation of types.VisionAnalyzer
type MockVisionAnalyzer struct {
	mock.Mock
}

func (m *MockVisionAnalyzer) AnalyzeUnit(ctx context.Context, unit timeline.Unit, framePaths []string) (timeline.Analysis, error) {
	args := m.Called(ctx, unit, framePaths)
	return args.Get(0).(timeline.Analysis), args.Error(1)
}

// MockClipGenerator is a mock implementation of types.ClipGenerator
type MockClipGenerator struct {
	mock.Mock
}

func (m *MockClipGenerator) GenerateClip(ctx context.Context, prompt string, outPath string) error {
	args := m.Called(ctx, prompt, outPath)
	return args.Error(0)
}

func (m *MockClipGenerator) EstimateCost(durationSec float64) float64 {
	args := m.Called(durationSec)
	return args.Get(0).(float64)
}

// MockAssembler is a mock implementation of types.Assembler
type MockAssembler struct {
	mock.Mock
}

func (m *MockAssembler) CutSegment(ctx context.Context, srcPath string, start, end float64, outPath string) error {
	args := m.Called(ctx, srcPath, start, end, outPath)
	return args.Error(0)
}

func (m *MockAssembler) StitchWithCrossfade(ctx context.Context, steps []timeline.StitchStep, outPath string) error {
	args := m.Called(ctx, steps, outPath)
	return args.Error(0)
}

func (m *MockAssembler) ConcatClips(ctx context.Context, clipPaths []string, outPath string) error {
	args := m.Called(ctx, clipPaths, outPath)
	return args.Error(0)
}
