package constants

const AppName = "kickshopping"
