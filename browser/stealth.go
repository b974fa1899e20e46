package browser

import (
	"encoding/json"
	"fmt"
)

// maskScript builds the startup script injected into every page of a
// stealth context. It masks the usual automation tells: navigator.webdriver,
// an empty language list, deterministic canvas pixel read-back, strict
// permission-query answers and the missing window.chrome object.
func maskScript(languages []string) string {
	langsJSON, err := json.Marshal(languages)
	if err != nil {
		langsJSON = []byte(`["en-US","en"]`)
	}
	return fmt.Sprintf(maskJS, langsJSON)
}

const maskJS = `() => {
	Object.defineProperty(navigator, 'webdriver', { get: () => false });
	Object.defineProperty(navigator, 'languages', { get: () => %s });

	// Perturb canvas read-back so the pixel hash differs per session.
	const originalGetImageData = CanvasRenderingContext2D.prototype.getImageData;
	CanvasRenderingContext2D.prototype.getImageData = function(x, y, width, height) {
		const imageData = originalGetImageData.call(this, x, y, width, height);
		const pixels = imageData.data;
		for (let i = 0; i < pixels.length; i += 4) {
			pixels[i] = pixels[i] + Math.floor(Math.random() * 3) - 1;
			pixels[i+1] = pixels[i+1] + Math.floor(Math.random() * 3) - 1;
			pixels[i+2] = pixels[i+2] + Math.floor(Math.random() * 3) - 1;
		}
		return imageData;
	};

	// Sensitive permission queries answer "prompt" like a fresh profile.
	const originalPermissions = navigator.permissions;
	navigator.permissions.query = async (param) => {
		if (param.name === 'notifications' || param.name === 'clipboard-read' || param.name === 'clipboard-write') {
			return { state: "prompt", onchange: null };
		}
		return originalPermissions.query(param);
	};

	// Headless Chrome lacks window.chrome; fake the feature object.
	window.chrome = { runtime: {} };
	window.navigator.chrome = { runtime: {} };
}`
