package model

import (
	"errors"
	"testing"
)

func TestDecodeTask(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantErr     bool
		wantPickup  string
		wantDropoff string
	}{
		{
			name:        "catering delivery",
			raw:         `{"taskId":"T-1","flightId":"SU100","point":"G11","details":{"takeFrom":"CS-1"}}`,
			wantPickup:  "CS-1",
			wantDropoff: "G11",
		},
		{
			name:        "follow-me escort",
			raw:         `{"taskId":"T-2","flightId":"SU200","details":{"runway":"RW-1","planeParking":"P-3"}}`,
			wantPickup:  "RW-1",
			wantDropoff: "P-3",
		},
		{
			name:        "point wins over plane parking",
			raw:         `{"taskId":"T-3","point":"G2","details":{"planeParking":"P-9"}}`,
			wantDropoff: "G2",
		},
		{name: "not json", raw: `{taskId`, wantErr: true},
		{name: "missing id", raw: `{"point":"G11"}`, wantErr: true},
		{name: "missing destination", raw: `{"taskId":"T-4","details":{"takeFrom":"CS-1"}}`, wantErr: true},
		{name: "wrong type", raw: `{"taskId":7}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := DecodeTask([]byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTask) {
					t.Fatalf("DecodeTask() error = %v, want ErrMalformedTask", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeTask() error = %v", err)
			}
			if got := task.PickupNode(); got != tt.wantPickup {
				t.Errorf("PickupNode() = %q, want %q", got, tt.wantPickup)
			}
			if got := task.DropoffNode(); got != tt.wantDropoff {
				t.Errorf("DropoffNode() = %q, want %q", got, tt.wantDropoff)
			}
		})
	}
}

func TestTaskAssignOnce(t *testing.T) {
	task := &Task{TaskID: "T-1"}
	if err := task.Assign("CT-1"); err != nil {
		t.Fatalf("first Assign() error = %v", err)
	}
	if err := task.Assign("CT-1"); err != nil {
		t.Errorf("repeating the same assignment failed: %v", err)
	}
	if err := task.Assign("CT-2"); err == nil {
		t.Error("reassigning to another vehicle succeeded")
	}
}

func TestNewVehicle(t *testing.T) {
	ct := NewVehicle("CT-1", KindCatering, "CS-1")
	if ct.Capacity != 100 || ct.Payload == nil || len(ct.Payload) != len(MenuCategories) {
		t.Errorf("catering truck = %+v", ct)
	}

	fm := NewVehicle("FM-1", KindFollowMe, "FS-1")
	if fm.Payload != nil {
		t.Errorf("follow-me car has a payload: %v", fm.Payload)
	}
	if !fm.Free() || fm.Location != "FS-1" {
		t.Errorf("follow-me car = %+v", fm)
	}

	c := ct.Clone()
	c.Payload["fish"] = 5
	if ct.Payload["fish"] != 0 {
		t.Error("Clone shares the payload map")
	}
}

func TestFreeOnReturnedSnapshot(t *testing.T) {
	snapshot := func(status Status) Vehicle {
		v := *NewVehicle("FM-1", KindFollowMe, "FS-1")
		v.Status = status
		return v
	}

	if !snapshot(StatusFree).Free() {
		t.Error("free snapshot reports busy")
	}
	if snapshot(StatusBusy).Free() {
		t.Error("busy snapshot reports free")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("followme"); err != nil || k != KindFollowMe {
		t.Errorf("ParseKind(followme) = %v, %v", k, err)
	}
	if _, err := ParseKind("tug"); err == nil {
		t.Error("ParseKind(tug) returned no error")
	}
}
