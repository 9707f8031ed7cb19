package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// DeviceSource reads frames from a capture device (HDMI grabber, webcam).
type DeviceSource struct {
	cap *gocv.VideoCapture
}

// OpenDevice opens a capture device by index.
func OpenDevice(index int) (*DeviceSource, error) {
	cap, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture device %d: %w", index, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("capture device %d: %w", index, ErrSourceClosed)
	}
	return &DeviceSource{cap: cap}, nil
}

// ReadFrame implements Source.
func (d *DeviceSource) ReadFrame() (gocv.Mat, error) {
	if d.cap == nil || !d.cap.IsOpened() {
		return gocv.Mat{}, ErrSourceClosed
	}
	frame := gocv.NewMat()
	if !d.cap.Read(&frame) {
		frame.Close()
		return gocv.Mat{}, ErrNoFrame
	}
	if frame.Empty() {
		frame.Close()
		return gocv.Mat{}, ErrNoFrame
	}
	return frame, nil
}

// Close implements Source.
func (d *DeviceSource) Close() error {
	if d.cap == nil {
		return nil
	}
	err := d.cap.Close()
	d.cap = nil
	return err
}
