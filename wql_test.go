package hostprobe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureNameFilter(t *testing.T) {
	tests := []struct {
		name  string
		names []string
		want  string
	}{
		{name: "no names", names: nil, want: ""},
		{name: "empty slice", names: []string{}, want: ""},
		{name: "single", names: []string{"Microsoft-Hyper-V-All"}, want: "WHERE Name = 'Microsoft-Hyper-V-All'"},
		{
			name:  "several",
			names: []string{"Microsoft-Windows-Subsystem-Linux", "VirtualMachinePlatform"},
			want:  "WHERE Name = 'Microsoft-Windows-Subsystem-Linux' OR Name = 'VirtualMachinePlatform'",
		},
		{name: "quote escaped", names: []string{"O'Brien"}, want: "WHERE Name = 'O''Brien'"},
		{name: "injection stays literal", names: []string{"x' OR '1'='1"}, want: "WHERE Name = 'x'' OR ''1''=''1'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, featureNameFilter(tt.names))
		})
	}
}
