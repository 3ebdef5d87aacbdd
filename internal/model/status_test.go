package model

import "testing"

func TestItemStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   ItemStatus
		expected bool
	}{
		{StatusPending, false},
		{StatusResolving, false},
		{StatusDownloading, false},
		{StatusDone, true},
		{StatusFailed, true},
		{StatusSkipped, true},
		{StatusQualityBlocked, true},
		{StatusAgeRestricted, true},
	}

	for _, test := range tests {
		result := test.status.IsTerminal()
		if result != test.expected {
			t.Errorf("ItemStatus(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestItemStatus_IsResettable(t *testing.T) {
	tests := []struct {
		status   ItemStatus
		expected bool
	}{
		{StatusPending, false},
		{StatusResolving, false},
		{StatusDownloading, false},
		{StatusDone, false},
		{StatusSkipped, false},
		{StatusFailed, true},
		{StatusQualityBlocked, true},
		{StatusAgeRestricted, true},
	}

	for _, test := range tests {
		result := test.status.IsResettable()
		if result != test.expected {
			t.Errorf("ItemStatus(%s).IsResettable() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestItemStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   ItemStatus
		expected bool
	}{
		{StatusPending, false},
		{StatusResolving, true},
		{StatusDownloading, true},
		{StatusDone, false},
		{StatusFailed, false},
	}

	for _, test := range tests {
		result := test.status.IsActive()
		if result != test.expected {
			t.Errorf("ItemStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestItemStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from     ItemStatus
		to       ItemStatus
		expected bool
	}{
		{StatusPending, StatusResolving, true},
		{StatusPending, StatusDownloading, false},
		{StatusResolving, StatusDownloading, true},
		{StatusResolving, StatusQualityBlocked, true},
		{StatusResolving, StatusAgeRestricted, true},
		{StatusResolving, StatusPending, true},
		{StatusResolving, StatusSkipped, true},
		{StatusDownloading, StatusDone, true},
		{StatusDownloading, StatusSkipped, true},
		{StatusDownloading, StatusFailed, true},
		{StatusDownloading, StatusQualityBlocked, true},
		{StatusDownloading, StatusAgeRestricted, true},
		{StatusDownloading, StatusPending, true},
		{StatusDone, StatusPending, false},
		{StatusDone, StatusDownloading, false},
		{StatusFailed, StatusDownloading, false},
		{StatusSkipped, StatusResolving, false},
	}

	for _, test := range tests {
		result := test.from.CanTransition(test.to)
		if result != test.expected {
			t.Errorf("CanTransition(%s -> %s) = %v, expected %v", test.from, test.to, result, test.expected)
		}
	}
}
