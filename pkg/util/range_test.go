package util

import (
	"reflect"
	"testing"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{
			name: "single value",
			spec: "5",
			want: []int{5},
		},
		{
			name: "simple range",
			spec: "1-5",
			want: []int{1, 2, 3, 4, 5},
		},
		{
			name: "comma separated",
			spec: "1,3,5",
			want: []int{1, 3, 5},
		},
		{
			name: "mixed",
			spec: "1-3,5,7-9",
			want: []int{1, 2, 3, 5, 7, 8, 9},
		},
		{
			name: "order kept",
			spec: "48,1-2",
			want: []int{48, 1, 2},
		},
		{
			name: "with spaces",
			spec: "1 - 3, 5",
			want: []int{1, 2, 3, 5},
		},
		{
			name: "empty string",
			spec: "",
			want: nil,
		},
		{
			name:    "duplicates rejected",
			spec:    "1-3,2-4",
			wantErr: true,
		},
		{
			name:    "invalid - start > end",
			spec:    "5-1",
			wantErr: true,
		},
		{
			name:    "invalid - not a number",
			spec:    "abc",
			wantErr: true,
		},
		{
			name:    "invalid - bad range format",
			spec:    "1-2-3",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestExpandInterfaceRange(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []string
		wantErr bool
	}{
		{
			name: "huawei range",
			spec: "10GE1/0/1-3",
			want: []string{"10GE1/0/1", "10GE1/0/2", "10GE1/0/3"},
		},
		{
			name: "single name unchanged",
			spec: "10GE1/0/48",
			want: []string{"10GE1/0/48"},
		},
		{
			name: "name without digits",
			spec: "mgmt",
			want: []string{"mgmt"},
		},
		{
			name: "ethernet range",
			spec: "Ethernet0-4",
			want: []string{"Ethernet0", "Ethernet1", "Ethernet2", "Ethernet3", "Ethernet4"},
		},
		{
			name: "ethernet comma",
			spec: "Ethernet0,4,8",
			want: []string{"Ethernet0", "Ethernet4", "Ethernet8"},
		},
		{
			name: "dash in prefix",
			spec: "Eth-Trunk1-2",
			want: []string{"Eth-Trunk1", "Eth-Trunk2"},
		},
		{
			name:    "no prefix",
			spec:    "0-4",
			wantErr: true,
		},
		{
			name:    "invalid range",
			spec:    "Ethernet5-1",
			wantErr: true,
		},
		{
			name:    "dangling dash",
			spec:    "10GE1/0/1-",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandInterfaceRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandInterfaceRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandInterfaceRange(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}
