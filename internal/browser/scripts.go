package browser

// Element-level scripts used where the driver's native actions are
// not enough: JS-managed widgets ignore keystrokes, and hover-gated
// menus never see real pointer events in headless sessions.

const tagNameScript = `el => el.tagName.toLowerCase()`

const scrollIntoViewScript = `el => el.scrollIntoView({behavior: 'instant', block: 'center'})`

const jsClickScript = `el => el.click()`

const currentValueScript = `el => el.value ?? ''`

// setValueScript assigns directly and notifies the framework layer;
// keystroke input can silently fail against managed form widgets.
const setValueScript = `(el, value) => {
	el.value = value;
	el.dispatchEvent(new Event('input', {bubbles: true}));
	el.dispatchEvent(new Event('change', {bubbles: true}));
}`

const dispatchHoverScript = `el => {
	for (const name of ['mouseover', 'mousemove', 'mouseenter']) {
		el.dispatchEvent(new Event(name, {bubbles: true}));
	}
}`

const forceVisibleScript = `el => {
	el.style.visibility = 'visible';
	el.style.opacity = 1;
	if (getComputedStyle(el).display === 'none') {
		el.style.display = 'block';
	}
}`
