package browser

import (
	"math/rand/v2"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Humanize performs a short burst of randomized pointer movement to make
// the session look less like a bot. Errors are swallowed: failing to move
// the mouse must never fail the fetch.
func Humanize(p *rod.Page) {
	moves := 2 + rand.IntN(4)
	for i := 0; i < moves; i++ {
		x := float64(100 + rand.IntN(700))
		y := float64(100 + rand.IntN(500))
		if err := p.Mouse.MoveLinear(proto.NewPoint(x, y), 3+rand.IntN(8)); err != nil {
			return
		}
		time.Sleep(time.Duration(100+rand.IntN(200)) * time.Millisecond)
	}
}

// RandomScroll scrolls the page down in a few uneven steps, occasionally
// scrolling back up, the way a reader skims a page.
func RandomScroll(p *rod.Page) {
	scrolls := 2 + rand.IntN(4)
	for i := 0; i < scrolls; i++ {
		if err := p.Mouse.Scroll(0, float64(100+rand.IntN(700)), 1); err != nil {
			return
		}
		time.Sleep(time.Duration(300+rand.IntN(700)) * time.Millisecond)
	}
	if rand.Float64() > 0.7 {
		_ = p.Mouse.Scroll(0, -float64(100+rand.IntN(300)), 1)
		time.Sleep(time.Duration(300+rand.IntN(400)) * time.Millisecond)
	}
}
