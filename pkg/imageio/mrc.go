package imageio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"radialscan/internal/models"
)

// MRC2014 layout constants
const (
	mrcHeaderSize = 1024

	mrcModeInt8    = 0
	mrcModeInt16   = 1
	mrcModeFloat32 = 2
	mrcModeUint16  = 6
)

// mrcHeader holds the header fields needed to read the data block
type mrcHeader struct {
	nx, ny, nz int
	mode       int
	nsymbt     int
	pixelSize  float64
	order      binary.ByteOrder
}

// readMRC loads one z-section of an MRC map. Rows follow ny and columns
// follow nx, so a 2D map has the same orientation as its numpy view.
func readMRC(path string, section int) (*models.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	hdr, err := parseMRCHeader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MRC header of %s: %w", path, err)
	}
	if section < 0 || section >= hdr.nz {
		return nil, fmt.Errorf("section %d out of range, %s has %d sections", section, path, hdr.nz)
	}

	bytesPerValue, err := mrcValueSize(hdr.mode)
	if err != nil {
		return nil, err
	}
	// Sizes are checked in int64 against the file length before allocating,
	// so a corrupt header cannot overflow or trigger a huge allocation.
	plane := int64(hdr.nx) * int64(hdr.ny)
	if plane > (math.MaxInt64-mrcHeaderSize-math.MaxInt32)/int64(bytesPerValue)/int64(hdr.nz) {
		return nil, fmt.Errorf("MRC dimensions %dx%dx%d of %s are too large", hdr.nx, hdr.ny, hdr.nz, path)
	}
	need := plane * int64(bytesPerValue)
	offset := int64(mrcHeaderSize) + int64(hdr.nsymbt) + int64(section)*need

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if offset+need > info.Size() {
		return nil, fmt.Errorf("MRC data of %s truncated: header needs %d bytes, file has %d", path, offset+need, info.Size())
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek to section %d: %w", section, err)
	}

	raw := make([]byte, need)
	if _, err := io.ReadFull(bufio.NewReader(file), raw); err != nil {
		return nil, fmt.Errorf("failed to read MRC data of %s: %w", path, err)
	}

	values := make([]float64, plane)
	for i := range values {
		b := raw[i*bytesPerValue:]
		switch hdr.mode {
		case mrcModeInt8:
			values[i] = float64(int8(b[0]))
		case mrcModeInt16:
			values[i] = float64(int16(hdr.order.Uint16(b)))
		case mrcModeUint16:
			values[i] = float64(hdr.order.Uint16(b))
		case mrcModeFloat32:
			values[i] = float64(math.Float32frombits(hdr.order.Uint32(b)))
		}
	}

	img, err := models.NewImage(hdr.ny, hdr.nx, values)
	if err != nil {
		return nil, err
	}
	img.PixelSize = hdr.pixelSize
	return img, nil
}

func parseMRCHeader(r io.Reader) (*mrcHeader, error) {
	buf := make([]byte, mrcHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}

	// Machine stamp at byte 212: 0x44 0x44 little endian, 0x11 0x11 big endian.
	// Old files may leave it zero; those are assumed little endian.
	var order binary.ByteOrder = binary.LittleEndian
	if buf[212] == 0x11 {
		order = binary.BigEndian
	}

	word := func(i int) int32 { return int32(order.Uint32(buf[i*4:])) }
	hdr := &mrcHeader{
		nx:     int(word(0)),
		ny:     int(word(1)),
		nz:     int(word(2)),
		mode:   int(word(3)),
		nsymbt: int(word(23)),
		order:  order,
	}
	if hdr.nx <= 0 || hdr.ny <= 0 || hdr.nz <= 0 {
		return nil, &models.DomainError{Op: "mrc header", Msg: fmt.Sprintf("degenerate dimensions %dx%dx%d", hdr.nx, hdr.ny, hdr.nz)}
	}
	if hdr.nsymbt < 0 {
		return nil, fmt.Errorf("negative extended header size %d", hdr.nsymbt)
	}

	// Pixel size is cella.x / mx
	mx := word(7)
	cellaX := math.Float32frombits(order.Uint32(buf[40:]))
	if mx > 0 && cellaX > 0 {
		hdr.pixelSize = float64(cellaX) / float64(mx)
	}
	return hdr, nil
}

func mrcValueSize(mode int) (int, error) {
	switch mode {
	case mrcModeInt8:
		return 1, nil
	case mrcModeInt16, mrcModeUint16:
		return 2, nil
	case mrcModeFloat32:
		return 4, nil
	default:
		return 0, fmt.Errorf("unsupported MRC mode %d", mode)
	}
}

// WriteMRC writes img as a single-section, mode 2, little-endian MRC2014 file
func WriteMRC(path string, img *models.Image) error {
	rows, cols := img.Dims()
	if rows == 0 || cols == 0 {
		return &models.DomainError{Op: "write mrc", Msg: "empty image"}
	}

	hdr := make([]byte, mrcHeaderSize)
	le := binary.LittleEndian
	putInt := func(i int, v int32) { le.PutUint32(hdr[i*4:], uint32(v)) }
	putFloat := func(i int, v float32) { le.PutUint32(hdr[i*4:], math.Float32bits(v)) }

	putInt(0, int32(cols))
	putInt(1, int32(rows))
	putInt(2, 1)
	putInt(3, mrcModeFloat32)
	// mx, my, mz
	putInt(7, int32(cols))
	putInt(8, int32(rows))
	putInt(9, 1)
	pixel := float32(img.PixelSize)
	if pixel <= 0 {
		pixel = 1
	}
	putFloat(10, pixel*float32(cols))
	putFloat(11, pixel*float32(rows))
	putFloat(12, pixel)
	putFloat(13, 90)
	putFloat(14, 90)
	putFloat(15, 90)
	// mapc, mapr, maps
	putInt(16, 1)
	putInt(17, 2)
	putInt(18, 3)

	values := make([]float32, 0, rows*cols)
	var sum float64
	minV, maxV := math.Inf(1), math.Inf(-1)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := img.Data.At(r, c)
			values = append(values, float32(v))
			sum += v
			minV = math.Min(minV, v)
			maxV = math.Max(maxV, v)
		}
	}
	putFloat(19, float32(minV))
	putFloat(20, float32(maxV))
	putFloat(21, float32(sum/float64(len(values))))
	putInt(27, 20140)
	copy(hdr[208:], "MAP ")
	hdr[212], hdr[213] = 0x44, 0x44

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create MRC file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	if _, err := w.Write(hdr); err != nil {
		return fmt.Errorf("failed to write MRC header: %w", err)
	}
	if err := binary.Write(w, le, values); err != nil {
		return fmt.Errorf("failed to write MRC data: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush MRC file: %w", err)
	}
	return file.Close()
}
