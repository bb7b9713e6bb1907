package speech

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/vocalpath/pkg/protocol"
	"github.com/teslashibe/vocalpath/pkg/tts"
)

type captured struct {
	mu   sync.Mutex
	msgs []*protocol.Message
}

func (c *captured) Send(m *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *captured) types() []protocol.MessageType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]protocol.MessageType, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = m.Type
	}
	return out
}

func (c *captured) speak(t *testing.T, i int) protocol.SpeakData {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var d protocol.SpeakData
	require.NoError(t, c.msgs[i].ParseData(&d))
	return d
}

func TestRemote(t *testing.T) {
	var sent captured
	r := NewRemote(&sent, nil)

	r.Speak("Person ahead, 3 steps")
	r.Speak("")
	r.Vibrate([]int{100, 60, 100})
	r.Vibrate(nil)
	r.Silence()

	assert.Equal(t, []protocol.MessageType{protocol.TypeSpeak, protocol.TypeHaptic, protocol.TypeSilence}, sent.types())
	assert.Equal(t, "Person ahead, 3 steps", sent.speak(t, 0).Text)

	var h protocol.HapticData
	require.NoError(t, sent.msgs[1].ParseData(&h))
	assert.Equal(t, []int{100, 60, 100}, h.Pattern)
}

func TestRemoteMute(t *testing.T) {
	var sent captured
	r := NewRemote(&sent, nil)

	r.SetMuted(true)
	assert.True(t, r.Muted())
	r.Speak("dropped")
	r.SetMuted(true)
	r.SetMuted(false)
	r.Speak("kept")

	// Muting once silences; repeating it does not.
	assert.Equal(t, []protocol.MessageType{protocol.TypeSilence, protocol.TypeSpeak}, sent.types())
	assert.Equal(t, "kept", sent.speak(t, 1).Text)
}

func TestRemoteSendErrorIsSwallowed(t *testing.T) {
	r := NewRemote(SenderFunc(func(*protocol.Message) error { return errors.New("closed") }), nil)
	assert.NotPanics(t, func() {
		r.Speak("hello")
		r.Silence()
		r.Vibrate([]int{1})
	})
}

func TestSynthSendsAudio(t *testing.T) {
	var sent captured
	s := NewSynth(tts.NewMock(), &sent, nil)

	s.Speak("Chair left")
	s.Wait()

	require.Equal(t, []protocol.MessageType{protocol.TypeSpeak}, sent.types())
	d := sent.speak(t, 0)
	assert.Equal(t, "Chair left", d.Text)
	assert.Equal(t, "audio/mpeg", d.Format)
	audio, err := d.DecodeAudio()
	require.NoError(t, err)
	assert.Len(t, audio, len("Chair left")*240)
}

func TestSynthFallsBackToText(t *testing.T) {
	var sent captured
	p := tts.NewMock()
	p.SynthesizeFunc = func(context.Context, string) (*tts.AudioResult, error) {
		return nil, tts.ErrProviderUnavailable
	}
	s := NewSynth(p, &sent, nil)

	s.Speak("Bottle right")
	s.Wait()

	require.Equal(t, []protocol.MessageType{protocol.TypeSpeak}, sent.types())
	d := sent.speak(t, 0)
	assert.Equal(t, "Bottle right", d.Text)
	assert.Empty(t, d.Audio)
}

func TestSynthNewPhraseCancelsOld(t *testing.T) {
	var sent captured
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	p := tts.NewMock()
	p.SynthesizeFunc = func(ctx context.Context, text string) (*tts.AudioResult, error) {
		started <- struct{}{}
		if text == "first" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		<-release
		return &tts.AudioResult{Audio: []byte{1}, Format: tts.AudioFormat{Encoding: tts.EncodingMP3Lo}}, nil
	}
	s := NewSynth(p, &sent, nil)

	s.Speak("first")
	<-started
	s.Speak("second")
	<-started
	close(release)
	s.Wait()

	require.Equal(t, []protocol.MessageType{protocol.TypeSpeak}, sent.types())
	assert.Equal(t, "second", sent.speak(t, 0).Text)
}

func TestSynthSilenceDropsPending(t *testing.T) {
	var sent captured
	started := make(chan struct{})
	p := tts.NewMock()
	p.SynthesizeFunc = func(ctx context.Context, text string) (*tts.AudioResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s := NewSynth(p, &sent, nil)

	s.Speak("pending")
	<-started
	s.Silence()
	s.Wait()

	assert.Equal(t, []protocol.MessageType{protocol.TypeSilence}, sent.types())
}

func TestConsole(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf)

	c.Speak("Door ahead")
	c.Vibrate([]int{80, 40, 80})
	c.SetMuted(true)
	c.Speak("hidden")

	assert.True(t, c.Muted())
	assert.Equal(t, "🔊 Door ahead\n📳 [80 40 80]\n", buf.String())
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Speak("one")
	r.Vibrate([]int{1, 2})
	r.SetMuted(true)
	r.Speak("two")
	r.Silence()

	assert.Equal(t, []string{"one"}, r.Spoken())
	assert.Len(t, r.Events(), 3)
	assert.Equal(t, []int{1, 2}, r.Events()[1].Pattern)

	r.Reset()
	assert.Empty(t, r.Events())
}
