package config_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mwilliams-bench/relaxq/internal/config"
	"github.com/stretchr/testify/require"
)

func TestParseStressFlagsDefaults(t *testing.T) {
	var stderr bytes.Buffer
	cfg, help, err := config.ParseStressFlags(nil, config.Throughput, &stderr)
	require.NoError(t, err)
	require.False(t, help)
	require.Equal(t, 4, cfg.NumThreads)
	require.Equal(t, "multiqueue", cfg.Variant)
	require.True(t, cfg.Pin)
}

func TestParseStressFlagsHelp(t *testing.T) {
	var stderr bytes.Buffer
	_, help, err := config.ParseStressFlags([]string{"-h"}, config.Throughput, &stderr)
	require.NoError(t, err)
	require.True(t, help)
}

func TestParseStressFlagsRejectsUnknownPolicy(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags([]string{"-i", "bogus"}, config.Throughput, &stderr)
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrInvalid))
}

func TestParseStressFlagsRejectsUnknownDistribution(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags([]string{"-d", "bogus"}, config.Throughput, &stderr)
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrInvalid))
}

func TestParseStressFlagsRejectsNonPositiveThreads(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags([]string{"-j", "0"}, config.Throughput, &stderr)
	require.Error(t, err)
}

func TestParseStressFlagsRejectsMinKeyAboveMaxKey(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags([]string{"-l", "100", "-m", "10"}, config.Throughput, &stderr)
	require.Error(t, err)
}

func TestParseStressFlagsRejectsSplitZeroPushThreadsWithElements(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags(
		[]string{"-i", "split", "-push-threads", "0", "-elements-per-thread", "100"},
		config.Throughput, &stderr,
	)
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrInvalid))
}

func TestParseStressFlagsAllowsSplitZeroPushThreadsWithoutElements(t *testing.T) {
	var stderr bytes.Buffer
	cfg, _, err := config.ParseStressFlags(
		[]string{"-i", "split", "-push-threads", "0"},
		config.Throughput, &stderr,
	)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Insert.NumPushThreads)
}

func TestParseStressFlagsRejectsSplitPushThreadsAboveThreadCount(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags(
		[]string{"-i", "split", "-j", "2", "-push-threads", "3"},
		config.Throughput, &stderr,
	)
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrInvalid))
}

func TestParseStressFlagsSplitDefaultsPushThreadsToHalf(t *testing.T) {
	var stderr bytes.Buffer
	cfg, _, err := config.ParseStressFlags([]string{"-i", "split", "-j", "6"}, config.Throughput, &stderr)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Insert.NumPushThreads)
}

func TestParseStressFlagsQualityModeEnforcesThreadCeiling(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseStressFlags([]string{"-j", "300"}, config.Quality, &stderr)
	require.Error(t, err)
	require.True(t, errors.Is(err, config.ErrInvalid))
}

func TestParseStressFlagsQualityModeAllowsMaxThreads(t *testing.T) {
	var stderr bytes.Buffer
	cfg, _, err := config.ParseStressFlags([]string{"-j", "255"}, config.Quality, &stderr)
	require.NoError(t, err)
	require.Equal(t, config.MaxQualityThreads, cfg.NumThreads)
}

func TestParseSSSPFlagsDefaults(t *testing.T) {
	var stderr bytes.Buffer
	cfg, help, err := config.ParseSSSPFlags(nil, &stderr)
	require.NoError(t, err)
	require.False(t, help)
	require.Equal(t, 4, cfg.NumThreads)
	require.Equal(t, "graph.gr", cfg.GraphPath)
}

func TestParseSSSPFlagsRejectsNonPositiveThreads(t *testing.T) {
	var stderr bytes.Buffer
	_, _, err := config.ParseSSSPFlags([]string{"-j", "-1"}, &stderr)
	require.Error(t, err)
}

func TestThreadSweepDoublesUpToMax(t *testing.T) {
	require.Equal(t, []int{1, 2, 4, 8}, config.ThreadSweep(8))
}

func TestThreadSweepNonPowerOfTwoMax(t *testing.T) {
	require.Equal(t, []int{1, 2, 4}, config.ThreadSweep(6))
}
