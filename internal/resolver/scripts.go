// File: internal/resolver/scripts.go
package resolver

import jsoniter "github.com/json-iterator/go"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsString marshals a Go string into a JavaScript string literal.
func jsString(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}

// cartScanScript walks the whole document collecting anything plausibly
// cart-related, capped at 20 candidates. Broad on purpose: scoring sorts
// the wheat from the chaff afterwards.
const cartScanScript = `(() => {
	const elements = Array.from(document.querySelectorAll('*'));
	const out = [];
	for (const el of elements) {
		const text = (el.textContent || '').toLowerCase();
		const className = (el.className && typeof el.className === 'string') ? el.className.toLowerCase() : '';
		const id = (el.id || '').toLowerCase();
		const testId = (el.getAttribute('data-testid') || '').toLowerCase();
		const ariaLabel = (el.getAttribute('aria-label') || '').toLowerCase();
		const href = (el.getAttribute('href') || '').toLowerCase();
		const role = (el.getAttribute('role') || '').toLowerCase();

		const isCartRelated =
			text.includes('cart') || text.includes('bag') || text.includes('basket') ||
			className.includes('cart') || className.includes('bag') || className.includes('basket') ||
			className.includes('minicart') || className.includes('mini-cart') ||
			id.includes('cart') || id.includes('bag') || id.includes('basket') ||
			testId.includes('cart') || testId.includes('bag') ||
			ariaLabel.includes('cart') || ariaLabel.includes('bag') ||
			href.includes('/cart') || href.includes('/bag') ||
			text.includes('shopping') || text.includes('checkout') ||
			/\$\d+/.test(text) || /\d+\s*item/.test(text) ||
			className.includes('total') || className.includes('subtotal') ||
			className.includes('price') || className.includes('count');

		if (!isCartRelated || el.offsetParent === null) continue;

		const rect = el.getBoundingClientRect();
		out.push({
			tag: el.tagName,
			text: text.slice(0, 100),
			className: className.slice(0, 100),
			id: id,
			testId: testId,
			ariaLabel: ariaLabel,
			href: href,
			role: role,
			visible: true,
			bounds: {x: rect.x, y: rect.y, width: rect.width, height: rect.height},
			hasChildren: el.children.length > 0,
			childCount: el.children.length,
			parentTag: el.parentElement ? el.parentElement.tagName : ''
		});
		if (out.length >= 20) break;
	}
	return out;
})()`

// elementProbeScript reads back the first match of a synthesized selector
// so the view handler can verify it actually carries cart content. %s is a
// JSON string literal of the selector.
const elementProbeScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return null;
	try {
		const rect = el.getBoundingClientRect();
		return {
			text: (el.textContent || '').slice(0, 200),
			tag: el.tagName,
			visible: el.offsetParent !== null,
			bounds: {x: rect.x, y: rect.y, width: rect.width, height: rect.height},
			className: (typeof el.className === 'string') ? el.className : '',
			id: el.id || '',
			innerHTML: (el.innerHTML || '').slice(0, 300),
			children: el.children.length
		};
	} catch (e) {
		return null;
	}
})()`

// tabInfoScript reads the state of the first match of a tab selector. %s is
// a JSON string literal of the selector.
const tabInfoScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return null;
	return {
		text: (el.textContent || '').trim(),
		ariaLabel: el.getAttribute('aria-label') || '',
		ariaSelected: el.getAttribute('aria-selected') || '',
		role: el.getAttribute('role') || '',
		className: (typeof el.className === 'string') ? el.className : '',
		tagName: el.tagName
	};
})()`

// focusedElementScript describes whatever holds keyboard focus after a
// synthetic Tab press.
const focusedElementScript = `(() => {
	const active = document.activeElement;
	if (!active || active === document.body) return null;
	return {
		tagName: active.tagName,
		text: (active.textContent || '').slice(0, 50),
		className: (typeof active.className === 'string') ? active.className : '',
		id: active.id || '',
		type: active.type || '',
		role: active.getAttribute('role') || ''
	};
})()`

// domOutlineScript produces a compact interactive-element outline for the
// hint provider. Kept small: the model needs landmarks, not the DOM.
const domOutlineScript = `(() => {
	const picks = document.querySelectorAll('a, button, [role="button"], input, [data-testid]');
	const lines = [];
	for (const el of picks) {
		if (el.offsetParent === null) continue;
		const bits = [el.tagName.toLowerCase()];
		if (el.id) bits.push('#' + el.id);
		const testId = el.getAttribute('data-testid');
		if (testId) bits.push('[data-testid=' + testId + ']');
		const aria = el.getAttribute('aria-label');
		if (aria) bits.push('[aria-label=' + aria + ']');
		const text = (el.textContent || '').trim().slice(0, 40);
		if (text) bits.push('"' + text + '"');
		lines.push(bits.join(' '));
		if (lines.length >= 120) break;
	}
	return lines.join('\n');
})()`
