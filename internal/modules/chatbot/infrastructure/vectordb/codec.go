package vectordb

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrInvalidEncoding 向量字节长度非 4 的整数倍（存储侧数据损坏）
var ErrInvalidEncoding = errors.New("vector bytes length is not a multiple of 4")

// EncodeVector 将定长 float32 向量编码为紧凑字节串。
//
// 每个分量固定 4 字节大端序，无填充。编码/解码必须使用同一字节序，
// 这是封闭系统内的存储格式，不是跨版本线协议。
func EncodeVector(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.BigEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// DecodeVector 是 EncodeVector 的精确逆运算（逐位还原）
func DecodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, ErrInvalidEncoding
	}
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.BigEndian.Uint32(data[i*4:]))
	}
	return vector, nil
}
