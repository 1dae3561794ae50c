package utils

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"
)

// RecoveredFile carries one recovered payload from the producer worker to the exporter.
type RecoveredFile struct {
	Id      int
	Fname   string
	Content []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

func GetBuffer() *bytes.Buffer {
	return bufPool.Get().(*bytes.Buffer)
}

func PutBuffer(buf *bytes.Buffer) {
	buf.Reset()
	bufPool.Put(buf)
}

// Unmarshal fills the exported fields of the struct pointed to by v from data,
// little-endian, in declaration order with no padding. Slice, pointer and
// interface fields are populated elsewhere and are skipped without consuming input.
func Unmarshal(data []byte, v any) error {
	structVal := reflect.ValueOf(v).Elem()
	structType := structVal.Type()

	idx := 0
	for i := 0; i < structVal.NumField(); i++ {
		field := structVal.Field(i)

		switch field.Kind() {
		case reflect.Uint8:
			if idx+1 > len(data) {
				return fmt.Errorf("short data for field %s", structType.Field(i).Name)
			}
			field.SetUint(uint64(data[idx]))
			idx += 1
		case reflect.Uint16:
			if idx+2 > len(data) {
				return fmt.Errorf("short data for field %s", structType.Field(i).Name)
			}
			field.SetUint(uint64(binary.LittleEndian.Uint16(data[idx : idx+2])))
			idx += 2
		case reflect.Uint32:
			if idx+4 > len(data) {
				return fmt.Errorf("short data for field %s", structType.Field(i).Name)
			}
			field.SetUint(uint64(binary.LittleEndian.Uint32(data[idx : idx+4])))
			idx += 4
		case reflect.Uint64:
			if idx+8 > len(data) {
				return fmt.Errorf("short data for field %s", structType.Field(i).Name)
			}
			field.SetUint(binary.LittleEndian.Uint64(data[idx : idx+8]))
			idx += 8
		case reflect.Array:
			length := field.Len()
			if idx+length > len(data) {
				return fmt.Errorf("short data for field %s", structType.Field(i).Name)
			}
			reflect.Copy(field, reflect.ValueOf(data[idx:idx+length]))
			idx += length
		case reflect.Slice, reflect.Ptr, reflect.Interface:
			continue
		default:
			return fmt.Errorf("unsupported field kind %s for field %s",
				field.Kind(), structType.Field(i).Name)
		}
	}
	return nil
}

func Hexify(data []byte) string {
	return hex.EncodeToString(data)
}

func GetMD5(data []byte) string {
	return fmt.Sprintf("%x", md5.Sum(data))
}

func GetSHA1(data []byte) string {
	return fmt.Sprintf("%x", sha1.Sum(data))
}

func Filter[T any](slice []T, condition func(T) bool) []T {
	var filtered []T
	for _, item := range slice {
		if condition(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// GetEntries splits a comma separated flag value, dropping empty items.
func GetEntries(values string) []string {
	var entries []string
	for _, entry := range strings.Split(values, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func GetEntriesInt(values string) []int {
	var entries []int
	for _, entry := range GetEntries(values) {
		val, err := strconv.Atoi(entry)
		if err != nil {
			continue
		}
		entries = append(entries, val)
	}
	return entries
}

// DecodeUTF16 decodes little-endian UTF-16 bytes, stopping at the first NUL.
func DecodeUTF16(data []byte) string {
	codeUnits := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		unit := binary.LittleEndian.Uint16(data[i : i+2])
		if unit == 0x0000 {
			break
		}
		codeUnits = append(codeUnits, unit)
	}
	return string(utf16.Decode(codeUnits))
}
