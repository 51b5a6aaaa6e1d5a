// File: internal/browser/scripts.go
package browser

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsString marshals a Go string into a JavaScript string literal so
// selectors and needles with quotes or backslashes embed safely.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		// Marshalling a string cannot fail; keep the compiler happy.
		return `""`
	}
	return string(b)
}

// The interaction scripts below re-locate elements on every call instead of
// holding node handles. Handles go stale across the re-renders this site
// does constantly; selectors do not.

const visibleScript = `(() => {
	const els = document.querySelectorAll(%s);
	const el = els[%d];
	if (!el) return false;
	const r = el.getBoundingClientRect();
	const style = window.getComputedStyle(el);
	return r.width > 0 && r.height > 0 &&
		style.visibility !== 'hidden' && style.display !== 'none';
})()`

const clickScript = `(() => {
	const el = document.querySelectorAll(%s)[%d];
	if (!el) return false;
	el.scrollIntoView({block: 'center', inline: 'center'});
	el.click();
	return true;
})()`

const hoverScript = `(() => {
	const el = document.querySelectorAll(%s)[%d];
	if (!el) return false;
	el.scrollIntoView({block: 'center', inline: 'center'});
	for (const type of ['mouseover', 'mouseenter', 'mousemove']) {
		el.dispatchEvent(new MouseEvent(type, {bubbles: true, cancelable: true, view: window}));
	}
	return true;
})()`

const textScript = `(() => {
	const el = document.querySelectorAll(%s)[%d];
	return el ? (el.textContent || '') : '';
})()`

// textMatchesScript collects visible elements whose text contains the
// needle, innermost match only. Approximates a recorded-label text lookup:
// the deepest element carrying the text is the one a user actually clicked.
const textMatchesScript = `(() => {
	const needle = %s.toLowerCase();
	const out = [];
	const all = document.querySelectorAll('a, button, span, div, li, p, label, h1, h2, h3, h4');
	for (const el of all) {
		const text = (el.textContent || '').trim();
		if (!text || !text.toLowerCase().includes(needle)) continue;
		let deeperMatch = false;
		for (const child of el.children) {
			if ((child.textContent || '').toLowerCase().includes(needle)) { deeperMatch = true; break; }
		}
		if (deeperMatch) continue;
		const r = el.getBoundingClientRect();
		if (r.width === 0 || r.height === 0) continue;
		out.push(el);
	}
	return out;
})()`

const countTextScript = textMatchesScript + `.length`

const clickTextScript = `(() => {
	const matches = ` + textMatchesScript + `;
	const el = matches[%d];
	if (!el) return false;
	el.scrollIntoView({block: 'center', inline: 'center'});
	el.click();
	return true;
})()`

const hoverTextScript = `(() => {
	const matches = ` + textMatchesScript + `;
	const el = matches[%d];
	if (!el) return false;
	el.scrollIntoView({block: 'center', inline: 'center'});
	for (const type of ['mouseover', 'mouseenter', 'mousemove']) {
		el.dispatchEvent(new MouseEvent(type, {bubbles: true, cancelable: true, view: window}));
	}
	return true;
})()`

const textContentAtScript = `(() => {
	const matches = ` + textMatchesScript + `;
	const el = matches[%d];
	return el ? (el.textContent || '') : '';
})()`
