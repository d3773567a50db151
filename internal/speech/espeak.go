package speech

/*
#cgo LDFLAGS: -lespeak-ng
#include <stdlib.h>
#include <string.h>
#include <espeak-ng/speak_lib.h>

int
jarvis_espeak_open(const char *voice, int rate)
{
	if (espeak_Initialize(AUDIO_OUTPUT_SYNCH_PLAYBACK, 500, NULL, 0) < 0)
	{ return -1; }

	espeak_VOICE specs = { .languages = voice };
	if (espeak_SetVoiceByProperties(&specs) != EE_OK)
	{ return -2; }

	espeak_SetParameter(espeakRATE, rate, 0);

	return 0;
}

int
jarvis_espeak_say(const char *text)
{
	if (!text)
	{ return -1; }

	if (espeak_Synth(text, strlen(text) + 1, 0, POS_CHARACTER, 0,
	                 espeakCHARS_AUTO, NULL, NULL) != EE_OK)
	{ return -2; }

	espeak_Synchronize();

	return 0;
}

void
jarvis_espeak_stop(void)
{
	espeak_Cancel();
}

void
jarvis_espeak_close(void)
{
	espeak_Terminate();
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// Espeak speaks through the espeak-ng engine. The engine is process
// global, so keep at most one Espeak alive.
type Espeak struct{}

// NewEspeak initializes espeak-ng with the given voice (an espeak
// language code such as "en") and speaking rate in words per minute.
func NewEspeak(voice string, rate int) (*Espeak, error) {
	if voice == "" {
		voice = "en"
	}
	if rate <= 0 {
		rate = 170
	}

	cvoice := C.CString(voice)
	defer C.free(unsafe.Pointer(cvoice))

	if rc := C.jarvis_espeak_open(cvoice, C.int(rate)); rc != 0 {
		return nil, fmt.Errorf("espeak init failed: %d", int(rc))
	}
	return &Espeak{}, nil
}

// Say blocks until the whole utterance has been played.
func (e *Espeak) Say(text string) error {
	if text == "" {
		return nil
	}

	ctext := C.CString(text)
	defer C.free(unsafe.Pointer(ctext))

	if rc := C.jarvis_espeak_say(ctext); rc != 0 {
		return fmt.Errorf("espeak_say failed: %d", int(rc))
	}
	return nil
}

// Stop aborts the utterance Say is currently playing.
func (e *Espeak) Stop() {
	C.jarvis_espeak_stop()
}

func (e *Espeak) Close() error {
	C.jarvis_espeak_close()
	return nil
}
