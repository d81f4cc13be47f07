package main

/*
#include <stdlib.h>
#include <string.h>
*/
import "C"
import (
	"unsafe"

	"sciqlop-cache/src/api"
)

//export Init
func Init(rootPath *C.char, maxSize C.ulonglong) C.int {
	if api.Init(C.GoString(rootPath), uint64(maxSize)) {
		return 1
	}
	return 0
}

//export Set
func Set(key *C.char, value *C.char, valueLen C.int, ttlSeconds C.double) C.int {
	valueBytes := C.GoBytes(unsafe.Pointer(value), valueLen)
	if api.Set(C.GoString(key), valueBytes, float64(ttlSeconds)) {
		return 1
	}
	return 0
}

//export Add
func Add(key *C.char, value *C.char, valueLen C.int, ttlSeconds C.double) C.int {
	valueBytes := C.GoBytes(unsafe.Pointer(value), valueLen)
	if api.Add(C.GoString(key), valueBytes, float64(ttlSeconds)) {
		return 1
	}
	return 0
}

//export Get
func Get(key *C.char, resultLen *C.int) *C.char {
	result := api.Get(C.GoString(key))
	if result == nil {
		*resultLen = 0
		return nil
	}

	*resultLen = C.int(len(result))

	// C.CBytes allocates with malloc; the caller frees via FreeMem.
	return (*C.char)(C.CBytes(result))
}

//export Pop
func Pop(key *C.char, resultLen *C.int) *C.char {
	result := api.Pop(C.GoString(key))
	if result == nil {
		*resultLen = 0
		return nil
	}

	*resultLen = C.int(len(result))
	return (*C.char)(C.CBytes(result))
}

//export Del
func Del(key *C.char) C.int {
	if api.Del(C.GoString(key)) {
		return 1
	}
	return 0
}

//export Touch
func Touch(key *C.char, ttlSeconds C.double) C.int {
	if api.Touch(C.GoString(key), float64(ttlSeconds)) {
		return 1
	}
	return 0
}

//export Exists
func Exists(key *C.char) C.int {
	if api.Exists(C.GoString(key)) {
		return 1
	}
	return 0
}

//export Count
func Count() C.ulonglong {
	return C.ulonglong(api.Count())
}

//export Size
func Size() C.ulonglong {
	return C.ulonglong(api.Size())
}

//export Expire
func Expire() C.int {
	if api.Expire() {
		return 1
	}
	return 0
}

//export Clear
func Clear() C.int {
	if api.Clear() {
		return 1
	}
	return 0
}

//export Check
func Check() C.int {
	if api.Check() {
		return 1
	}
	return 0
}

//export Close
func Close() C.int {
	if api.Close() {
		return 1
	}
	return 0
}

//export FreeMem
func FreeMem(ptr *C.char) {
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}
