//go:build darwin && cgo

package audio

/*
#cgo LDFLAGS: -framework CoreAudio -framework CoreFoundation
#include <stdint.h>
#include <CoreAudio/CoreAudio.h>
#include <CoreFoundation/CoreFoundation.h>

enum { VG_VOLUME = 0, VG_MUTE = 1, VG_DEFAULT_OUTPUT = 2, VG_DEVICES = 3 };

extern void vgAudioPropertyChanged(uintptr_t token);

static AudioObjectPropertyAddress vgAddress(int prop, UInt32 elem) {
	AudioObjectPropertyAddress addr;
	addr.mElement = elem;
	switch (prop) {
	case VG_VOLUME:
		addr.mSelector = kAudioDevicePropertyVolumeScalar;
		addr.mScope = kAudioDevicePropertyScopeOutput;
		break;
	case VG_MUTE:
		addr.mSelector = kAudioDevicePropertyMute;
		addr.mScope = kAudioDevicePropertyScopeOutput;
		break;
	case VG_DEFAULT_OUTPUT:
		addr.mSelector = kAudioHardwarePropertyDefaultOutputDevice;
		addr.mScope = kAudioObjectPropertyScopeGlobal;
		break;
	default:
		addr.mSelector = kAudioHardwarePropertyDevices;
		addr.mScope = kAudioObjectPropertyScopeGlobal;
		break;
	}
	return addr;
}

static Boolean vgHasProperty(AudioObjectID obj, int prop, UInt32 elem) {
	AudioObjectPropertyAddress addr = vgAddress(prop, elem);
	return AudioObjectHasProperty(obj, &addr);
}

static OSStatus vgGetScalar(AudioObjectID obj, UInt32 elem, Float32 *out) {
	AudioObjectPropertyAddress addr = vgAddress(VG_VOLUME, elem);
	UInt32 size = sizeof(Float32);
	return AudioObjectGetPropertyData(obj, &addr, 0, NULL, &size, out);
}

static OSStatus vgSetScalar(AudioObjectID obj, UInt32 elem, Float32 value) {
	AudioObjectPropertyAddress addr = vgAddress(VG_VOLUME, elem);
	return AudioObjectSetPropertyData(obj, &addr, 0, NULL, sizeof(Float32), &value);
}

static OSStatus vgGetMute(AudioObjectID obj, UInt32 elem, UInt32 *out) {
	AudioObjectPropertyAddress addr = vgAddress(VG_MUTE, elem);
	UInt32 size = sizeof(UInt32);
	return AudioObjectGetPropertyData(obj, &addr, 0, NULL, &size, out);
}

static OSStatus vgSetMute(AudioObjectID obj, UInt32 elem, UInt32 value) {
	AudioObjectPropertyAddress addr = vgAddress(VG_MUTE, elem);
	return AudioObjectSetPropertyData(obj, &addr, 0, NULL, sizeof(UInt32), &value);
}

static OSStatus vgDefaultOutput(AudioObjectID *out) {
	AudioObjectPropertyAddress addr = vgAddress(VG_DEFAULT_OUTPUT, 0);
	UInt32 size = sizeof(AudioObjectID);
	return AudioObjectGetPropertyData(kAudioObjectSystemObject, &addr, 0, NULL, &size, out);
}

static OSStatus vgDeviceCount(UInt32 *count) {
	AudioObjectPropertyAddress addr = vgAddress(VG_DEVICES, 0);
	UInt32 size = 0;
	OSStatus st = AudioObjectGetPropertyDataSize(kAudioObjectSystemObject, &addr, 0, NULL, &size);
	*count = size / sizeof(AudioObjectID);
	return st;
}

static OSStatus vgDeviceList(AudioObjectID *ids, UInt32 *count) {
	AudioObjectPropertyAddress addr = vgAddress(VG_DEVICES, 0);
	UInt32 size = *count * sizeof(AudioObjectID);
	OSStatus st = AudioObjectGetPropertyData(kAudioObjectSystemObject, &addr, 0, NULL, &size, ids);
	*count = size / sizeof(AudioObjectID);
	return st;
}

static UInt32 vgOutputStreamCount(AudioObjectID dev) {
	AudioObjectPropertyAddress addr = {
		kAudioDevicePropertyStreams,
		kAudioDevicePropertyScopeOutput,
		0,
	};
	UInt32 size = 0;
	if (AudioObjectGetPropertyDataSize(dev, &addr, 0, NULL, &size) != noErr) {
		return 0;
	}
	return size / sizeof(AudioStreamID);
}

static OSStatus vgDeviceName(AudioObjectID dev, char *buf, UInt32 buflen) {
	AudioObjectPropertyAddress addr = {
		kAudioObjectPropertyName,
		kAudioObjectPropertyScopeGlobal,
		0,
	};
	CFStringRef name = NULL;
	UInt32 size = sizeof(CFStringRef);
	OSStatus st = AudioObjectGetPropertyData(dev, &addr, 0, NULL, &size, &name);
	if (st != noErr) {
		return st;
	}
	if (name == NULL) {
		return kAudioHardwareUnspecifiedError;
	}
	Boolean ok = CFStringGetCString(name, buf, buflen, kCFStringEncodingUTF8);
	CFRelease(name);
	return ok ? noErr : kAudioHardwareUnspecifiedError;
}

static OSStatus vgListener(AudioObjectID obj, UInt32 n, const AudioObjectPropertyAddress *addrs, void *data) {
	vgAudioPropertyChanged((uintptr_t)data);
	return noErr;
}

static OSStatus vgAddListener(AudioObjectID obj, int prop, UInt32 elem, uintptr_t token) {
	AudioObjectPropertyAddress addr = vgAddress(prop, elem);
	return AudioObjectAddPropertyListener(obj, &addr, vgListener, (void *)token);
}

static OSStatus vgRemoveListener(AudioObjectID obj, int prop, UInt32 elem, uintptr_t token) {
	AudioObjectPropertyAddress addr = vgAddress(prop, elem);
	return AudioObjectRemovePropertyListener(obj, &addr, vgListener, (void *)token);
}
*/
import "C"

import (
	"strings"
	"sync"
	"unsafe"

	"github.com/euxx/volume-grid-sub001/internal/model"
)

const deviceNameBufferSize = 256

type listenerAddress struct {
	id   model.DeviceID
	prop Property
	elem Element
}

// systemHAL talks to CoreAudio.
type systemHAL struct {
	mu     sync.Mutex
	tokens map[listenerAddress]uintptr
}

// NewSystemHAL returns the CoreAudio backend.
func NewSystemHAL() (HAL, error) {
	return &systemHAL{tokens: make(map[listenerAddress]uintptr)}, nil
}

func statusErr(op string, st C.OSStatus) error {
	if st == 0 {
		return nil
	}
	return &StatusError{Op: op, Status: int32(st)}
}

func (h *systemHAL) DefaultOutputDevice() (model.DeviceID, error) {
	var id C.AudioObjectID
	if err := statusErr("get default output device", C.vgDefaultOutput(&id)); err != nil {
		return model.NoDevice, err
	}
	if id == 0 {
		return model.NoDevice, ErrNoDevice
	}
	return model.DeviceID(id), nil
}

func (h *systemHAL) Devices() ([]model.DeviceID, error) {
	var count C.UInt32
	if err := statusErr("get device list size", C.vgDeviceCount(&count)); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	ids := make([]C.AudioObjectID, count)
	if err := statusErr("get device list", C.vgDeviceList(&ids[0], &count)); err != nil {
		return nil, err
	}

	devices := make([]model.DeviceID, 0, count)
	for _, id := range ids[:count] {
		if C.vgOutputStreamCount(id) == 0 {
			continue
		}
		devices = append(devices, model.DeviceID(id))
	}
	return devices, nil
}

func (h *systemHAL) DeviceName(id model.DeviceID) (string, error) {
	buf := make([]byte, deviceNameBufferSize)
	st := C.vgDeviceName(C.AudioObjectID(id), (*C.char)(unsafe.Pointer(&buf[0])), C.UInt32(len(buf)))
	if err := statusErr("get device name", st); err != nil {
		return "", err
	}
	name, _, _ := strings.Cut(string(buf), "\x00")
	return name, nil
}

func (h *systemHAL) HasProperty(id model.DeviceID, prop Property, elem Element) bool {
	return C.vgHasProperty(C.AudioObjectID(id), C.int(prop), C.UInt32(elem)) != 0
}

func (h *systemHAL) Scalar(id model.DeviceID, elem Element) (float64, error) {
	var v C.Float32
	if err := statusErr("get volume scalar", C.vgGetScalar(C.AudioObjectID(id), C.UInt32(elem), &v)); err != nil {
		return 0, err
	}
	return float64(v), nil
}

func (h *systemHAL) SetScalar(id model.DeviceID, elem Element, value float64) error {
	return statusErr("set volume scalar", C.vgSetScalar(C.AudioObjectID(id), C.UInt32(elem), C.Float32(value)))
}

func (h *systemHAL) Mute(id model.DeviceID, elem Element) (bool, error) {
	var v C.UInt32
	if err := statusErr("get mute", C.vgGetMute(C.AudioObjectID(id), C.UInt32(elem), &v)); err != nil {
		return false, err
	}
	return v != 0, nil
}

func (h *systemHAL) SetMute(id model.DeviceID, elem Element, muted bool) error {
	var v C.UInt32
	if muted {
		v = 1
	}
	return statusErr("set mute", C.vgSetMute(C.AudioObjectID(id), C.UInt32(elem), v))
}

func (h *systemHAL) AddListener(id model.DeviceID, prop Property, elem Element, fn func()) error {
	addr := listenerAddress{id, prop, elem}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.tokens[addr]; exists {
		return ErrAlreadyListening
	}

	token := registerCallback(fn)
	st := C.vgAddListener(C.AudioObjectID(id), C.int(prop), C.UInt32(elem), C.uintptr_t(token))
	if err := statusErr("add property listener", st); err != nil {
		unregisterCallback(token)
		return err
	}
	h.tokens[addr] = token
	return nil
}

func (h *systemHAL) RemoveListener(id model.DeviceID, prop Property, elem Element) error {
	addr := listenerAddress{id, prop, elem}

	h.mu.Lock()
	defer h.mu.Unlock()
	token, exists := h.tokens[addr]
	if !exists {
		return ErrNotListening
	}
	delete(h.tokens, addr)

	st := C.vgRemoveListener(C.AudioObjectID(id), C.int(prop), C.UInt32(elem), C.uintptr_t(token))
	// Callbacks already queued by CoreAudio find no registry entry and do nothing.
	unregisterCallback(token)
	return statusErr("remove property listener", st)
}
