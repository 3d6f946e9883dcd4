package config

// DefaultWindowClass is the class name of the host's main window.
const DefaultWindowClass = "UnityWndClass"
